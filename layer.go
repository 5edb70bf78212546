package unpoly

import (
	"encoding/json"
	"strconv"
)

// LayerMode is the presentation style of an Unpoly layer.
//
// See https://unpoly.com/layer-terminology
type LayerMode string

const (
	// ModeRoot is the initial page.
	ModeRoot LayerMode = "root"
	// ModeModal is a modal dialog box.
	ModeModal LayerMode = "modal"
	// ModeDrawer is a drawer sliding in from the side.
	ModeDrawer LayerMode = "drawer"
	// ModePopup is a popup menu anchored to a link.
	ModePopup LayerMode = "popup"
	// ModeCover is an overlay covering the entire screen.
	ModeCover LayerMode = "cover"
)

// ParseLayerMode maps a raw X-Up-Mode header value to a LayerMode.
// Unknown or empty values map to ModeRoot.
func ParseLayerMode(value string) LayerMode {
	switch value {
	case "modal":
		return ModeModal
	case "drawer":
		return ModeDrawer
	case "popup":
		return ModePopup
	case "cover":
		return ModeCover
	default:
		return ModeRoot
	}
}

// IsRoot reports whether the layer is the root layer.
func (m LayerMode) IsRoot() bool {
	return m == ModeRoot
}

// IsOverlay reports whether the layer is an overlay, i.e. not the root layer.
func (m LayerMode) IsOverlay() bool {
	return m != ModeRoot
}

// MatchingLayer selects a layer relative to the layer that made the request.
// Use the Layer* values, or LayerAt for a specific layer index.
//
// See https://unpoly.com/layer-option
type MatchingLayer struct {
	name  string
	index uint32
}

var (
	// LayerCurrent matches the current layer.
	LayerCurrent = MatchingLayer{name: "current"}
	// LayerParent matches the layer that opened the current layer.
	LayerParent = MatchingLayer{name: "parent"}
	// LayerClosest matches the current layer or any ancestor, preferring
	// closer layers.
	LayerClosest = MatchingLayer{name: "closest"}
	// LayerOverlay matches any overlay.
	LayerOverlay = MatchingLayer{name: "overlay"}
	// LayerAncestor matches any ancestor layer of the current layer.
	LayerAncestor = MatchingLayer{name: "ancestor"}
	// LayerChild matches the child layer of the current layer.
	LayerChild = MatchingLayer{name: "child"}
	// LayerDescendant matches any descendant of the current layer.
	LayerDescendant = MatchingLayer{name: "descendant"}
	// LayerSubtree matches the current layer and its descendants.
	LayerSubtree = MatchingLayer{name: "subtree"}
)

// LayerAt matches the layer at the given index, where 0 is the root layer.
func LayerAt(index uint32) MatchingLayer {
	return MatchingLayer{index: index}
}

func (m MatchingLayer) String() string {
	if m.name == "" {
		return strconv.FormatUint(uint64(m.index), 10)
	}
	return m.name
}

// MarshalJSON encodes an index matcher as a bare number and every other
// matcher as its lowercase name.
func (m MatchingLayer) MarshalJSON() ([]byte, error) {
	if m.name == "" {
		return []byte(strconv.FormatUint(uint64(m.index), 10)), nil
	}
	return json.Marshal(m.name)
}
