package platform

import "github.com/hajimehoshi/ebiten/v2"

type fakeKeys struct {
	held map[ebiten.Key]bool
	just map[ebiten.Key]bool
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{held: map[ebiten.Key]bool{}, just: map[ebiten.Key]bool{}}
}

func (k *fakeKeys) Pressed(key ebiten.Key) bool     { return k.held[key] }
func (k *fakeKeys) JustPressed(key ebiten.Key) bool { return k.just[key] }
