package scene

import "fmt"

// Kind identifies a scene variant
type Kind int

const (
	KindSplash Kind = iota
	KindLoading
	KindMainMenu
	KindCredits
	KindSettings
	KindProfile
	KindLevelMenu
	KindShop
	KindCutscene
	KindLevel
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindSplash:
		return "splash"
	case KindLoading:
		return "loading"
	case KindMainMenu:
		return "mainMenu"
	case KindCredits:
		return "credits"
	case KindSettings:
		return "settings"
	case KindProfile:
		return "profile"
	case KindLevelMenu:
		return "levelMenu"
	case KindShop:
		return "shop"
	case KindCutscene:
		return "cutscene"
	case KindLevel:
		return "level"
	default:
		return "unknown"
	}
}

// Indexed reports whether keys of this kind carry a level index
func (k Kind) Indexed() bool {
	return k == KindCutscene || k == KindLevel
}

// Key identifies a registered scene.
// Index is only meaningful for indexed kinds.
type Key struct {
	Kind  Kind
	Index int
}

// Static scene keys
var (
	Splash    = Key{Kind: KindSplash}
	Loading   = Key{Kind: KindLoading}
	MainMenu  = Key{Kind: KindMainMenu}
	Credits   = Key{Kind: KindCredits}
	Settings  = Key{Kind: KindSettings}
	Profile   = Key{Kind: KindProfile}
	LevelMenu = Key{Kind: KindLevelMenu}
	Shop      = Key{Kind: KindShop}
)

// Level returns the key of the level scene for index n
func Level(n int) Key {
	return Key{Kind: KindLevel, Index: n}
}

// Cutscene returns the key of the cutscene scene for index n
func Cutscene(n int) Key {
	return Key{Kind: KindCutscene, Index: n}
}

// String renders the key as level_3, cutscene_3, mainMenu, ...
func (k Key) String() string {
	if k.Kind.Indexed() {
		return fmt.Sprintf("%s_%d", k.Kind, k.Index)
	}
	return k.Kind.String()
}
