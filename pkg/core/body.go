package core

import (
	"fmt"
	"strings"
)

// Depth classifies a body part as reachable from the outside or buried
// inside the body.
type Depth int

const (
	DepthUndefined Depth = iota
	Inside
	Outside
)

func (d Depth) String() string {
	switch d {
	case Inside:
		return "Inside"
	case Outside:
		return "Outside"
	default:
		return "Undefined"
	}
}

// ParseDepth parses "Inside"/"Outside"; anything else is DepthUndefined.
func ParseDepth(s string) Depth {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inside":
		return Inside
	case "outside":
		return Outside
	default:
		return DepthUndefined
	}
}

func (d Depth) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Depth) UnmarshalText(text []byte) error {
	*d = ParseDepth(string(text))
	return nil
}

// BodyPartDef names the kind of a body part. Several parts may share a def
// (both lungs are "Lung").
type BodyPartDef string

const (
	PartTorso    BodyPartDef = "Torso"
	PartNeck     BodyPartDef = "Neck"
	PartHead     BodyPartDef = "Head"
	PartSkull    BodyPartDef = "Skull"
	PartBrain    BodyPartDef = "Brain"
	PartEye      BodyPartDef = "Eye"
	PartEar      BodyPartDef = "Ear"
	PartNose     BodyPartDef = "Nose"
	PartJaw      BodyPartDef = "Jaw"
	PartHeart    BodyPartDef = "Heart"
	PartLung     BodyPartDef = "Lung"
	PartKidney   BodyPartDef = "Kidney"
	PartLiver    BodyPartDef = "Liver"
	PartStomach  BodyPartDef = "Stomach"
	PartSpine    BodyPartDef = "Spine"
	PartShoulder BodyPartDef = "Shoulder"
	PartArm      BodyPartDef = "Arm"
	PartHand     BodyPartDef = "Hand"
	PartLeg      BodyPartDef = "Leg"
	PartFoot     BodyPartDef = "Foot"
)

// BodyPart is one node of an actor's anatomy. Coverage is the fraction of
// the parent part this part covers; the root part has no parent.
type BodyPart struct {
	ID        string      `json:"id"`
	Def       BodyPartDef `json:"def"`
	Parent    string      `json:"parent,omitempty"`
	Depth     Depth       `json:"depth"`
	Coverage  float64     `json:"coverage"`
	MaxHealth float64     `json:"maxHealth"`
	Vital     bool        `json:"vital,omitempty"`
}

// ValidateBody checks ids are unique, parents exist and exactly one root is present.
func ValidateBody(parts []BodyPart) error {
	if len(parts) == 0 {
		return fmt.Errorf("body has no parts")
	}
	ids := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p.ID == "" {
			return fmt.Errorf("body part with def %q has no id", p.Def)
		}
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("duplicate body part id %q", p.ID)
		}
		ids[p.ID] = struct{}{}
	}
	roots := 0
	for _, p := range parts {
		if p.Parent == "" {
			roots++
			continue
		}
		if _, ok := ids[p.Parent]; !ok {
			return fmt.Errorf("body part %q has unknown parent %q", p.ID, p.Parent)
		}
	}
	if roots != 1 {
		return fmt.Errorf("body must have exactly one root part, found %d", roots)
	}
	return nil
}

// HumanBody returns the default humanlike anatomy used when the host does
// not send one.
func HumanBody() []BodyPart {
	return []BodyPart{
		{ID: "Torso", Def: PartTorso, Depth: Outside, Coverage: 1, MaxHealth: 40, Vital: true},
		{ID: "Spine", Def: PartSpine, Parent: "Torso", Depth: Inside, Coverage: 0.025, MaxHealth: 25},
		{ID: "Stomach", Def: PartStomach, Parent: "Torso", Depth: Inside, Coverage: 0.025, MaxHealth: 20},
		{ID: "Heart", Def: PartHeart, Parent: "Torso", Depth: Inside, Coverage: 0.02, MaxHealth: 15, Vital: true},
		{ID: "LeftLung", Def: PartLung, Parent: "Torso", Depth: Inside, Coverage: 0.025, MaxHealth: 15},
		{ID: "RightLung", Def: PartLung, Parent: "Torso", Depth: Inside, Coverage: 0.025, MaxHealth: 15},
		{ID: "LeftKidney", Def: PartKidney, Parent: "Torso", Depth: Inside, Coverage: 0.017, MaxHealth: 15},
		{ID: "RightKidney", Def: PartKidney, Parent: "Torso", Depth: Inside, Coverage: 0.017, MaxHealth: 15},
		{ID: "Liver", Def: PartLiver, Parent: "Torso", Depth: Inside, Coverage: 0.025, MaxHealth: 20},
		{ID: "Neck", Def: PartNeck, Parent: "Torso", Depth: Outside, Coverage: 0.075, MaxHealth: 25, Vital: true},
		{ID: "Head", Def: PartHead, Parent: "Neck", Depth: Outside, Coverage: 0.8, MaxHealth: 25, Vital: true},
		{ID: "Skull", Def: PartSkull, Parent: "Head", Depth: Inside, Coverage: 0.25, MaxHealth: 25},
		{ID: "Brain", Def: PartBrain, Parent: "Skull", Depth: Inside, Coverage: 0.8, MaxHealth: 10, Vital: true},
		{ID: "LeftEye", Def: PartEye, Parent: "Head", Depth: Outside, Coverage: 0.07, MaxHealth: 10},
		{ID: "RightEye", Def: PartEye, Parent: "Head", Depth: Outside, Coverage: 0.07, MaxHealth: 10},
		{ID: "LeftEar", Def: PartEar, Parent: "Head", Depth: Outside, Coverage: 0.07, MaxHealth: 12},
		{ID: "RightEar", Def: PartEar, Parent: "Head", Depth: Outside, Coverage: 0.07, MaxHealth: 12},
		{ID: "Nose", Def: PartNose, Parent: "Head", Depth: Outside, Coverage: 0.1, MaxHealth: 10},
		{ID: "Jaw", Def: PartJaw, Parent: "Head", Depth: Outside, Coverage: 0.15, MaxHealth: 20},
		{ID: "LeftShoulder", Def: PartShoulder, Parent: "Torso", Depth: Outside, Coverage: 0.12, MaxHealth: 30},
		{ID: "LeftArm", Def: PartArm, Parent: "LeftShoulder", Depth: Outside, Coverage: 0.77, MaxHealth: 30},
		{ID: "LeftHand", Def: PartHand, Parent: "LeftArm", Depth: Outside, Coverage: 0.14, MaxHealth: 20},
		{ID: "RightShoulder", Def: PartShoulder, Parent: "Torso", Depth: Outside, Coverage: 0.12, MaxHealth: 30},
		{ID: "RightArm", Def: PartArm, Parent: "RightShoulder", Depth: Outside, Coverage: 0.77, MaxHealth: 30},
		{ID: "RightHand", Def: PartHand, Parent: "RightArm", Depth: Outside, Coverage: 0.14, MaxHealth: 20},
		{ID: "LeftLeg", Def: PartLeg, Parent: "Torso", Depth: Outside, Coverage: 0.14, MaxHealth: 30},
		{ID: "LeftFoot", Def: PartFoot, Parent: "LeftLeg", Depth: Outside, Coverage: 0.1, MaxHealth: 25},
		{ID: "RightLeg", Def: PartLeg, Parent: "Torso", Depth: Outside, Coverage: 0.14, MaxHealth: 30},
		{ID: "RightFoot", Def: PartFoot, Parent: "RightLeg", Depth: Outside, Coverage: 0.1, MaxHealth: 25},
	}
}
