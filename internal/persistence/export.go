package persistence

import (
	"cled/internal/holds"
	"cled/internal/routes"
)

// Snapshot is everything Export reads. Holds and Routes are required.
type Snapshot struct {
	Player          Player
	WallModelPath   string
	HoldModelsPath  string
	Holds           *holds.Manager
	Routes          *routes.Book
	Selection       []string
	Lights          Lights
	CaptureSettings CaptureSettings
}

// Export flattens s into a document. A held hold that was picked up off the
// wall is saved at its current pose like a placed one; a new hold that was
// never put down is left out. Only usable routes are kept; markers are kept
// for every exported hold.
func Export(s Snapshot) *Document {
	doc := &Document{
		Version:                  Version,
		Player:                   s.Player,
		WallModelPath:            s.WallModelPath,
		HoldModelsPath:           s.HoldModelsPath,
		Holds:                    make(map[string]Hold),
		SelectedHoldBlueprintIDs: append([]string{}, s.Selection...),
		Lights:                   s.Lights,
		CaptureSettings:          s.CaptureSettings,
	}

	all := s.Holds.Placed()
	if h := s.Holds.Held(); h != nil && h.WasPlaced() {
		all = append(all, h)
	}
	for _, h := range all {
		doc.Holds[HoldID(h.UID())] = Hold{
			BlueprintID: h.Blueprint.ID,
			Position:    ToVec3(h.Position()),
			Normal:      ToVec3(h.Normal),
			State:       h.State,
		}
	}

	for _, r := range s.Routes.UsableRoutes() {
		dr := Route{Name: r.Name, Grade: r.Grade, Zone: r.Zone, Setter: r.Setter}
		for _, uid := range r.Holds() {
			if id := HoldID(uid); hasHold(doc, id) {
				dr.HoldIDs = append(dr.HoldIDs, id)
			}
		}
		if len(dr.HoldIDs) > 0 {
			doc.Routes = append(doc.Routes, dr)
		}
	}

	doc.StartingHoldIDs = markerIDs(doc, s.Routes.StartingHolds())
	doc.EndingHoldIDs = markerIDs(doc, s.Routes.EndingHolds())
	return doc
}

func markerIDs(doc *Document, uids []uint64) []string {
	var out []string
	for _, uid := range uids {
		if id := HoldID(uid); hasHold(doc, id) {
			out = append(out, id)
		}
	}
	return out
}

func hasHold(doc *Document, id string) bool {
	_, ok := doc.Holds[id]
	return ok
}
