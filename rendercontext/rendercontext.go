// Package rendercontext tracks gpu side data of resources and frees data
// that was not used during the previous frame.
package rendercontext

type TempDataHolder interface {
	ClearTempRenderData()
}

var global = NewStore()

func Use(dh TempDataHolder) { global.Use(dh) }
func Swap()                 { global.Swap() }
func Forget(dh TempDataHolder) {
	global.Forget(dh)
}

type Store struct {
	used    map[TempDataHolder]struct{}
	notUsed map[TempDataHolder]struct{}
}

func NewStore() *Store {
	return &Store{
		used:    make(map[TempDataHolder]struct{}),
		notUsed: make(map[TempDataHolder]struct{}),
	}
}

// Swap is called once per frame after rendering.
// Holders not used since previous Swap get their data cleared.
func (s *Store) Swap() {
	for dh := range s.notUsed {
		dh.ClearTempRenderData()
	}
	s.notUsed = s.used
	s.used = make(map[TempDataHolder]struct{})
}

func (s *Store) Use(dh TempDataHolder) {
	delete(s.notUsed, dh)
	s.used[dh] = struct{}{}
}

// Forget drops holder without clearing, used when owner frees it itself
func (s *Store) Forget(dh TempDataHolder) {
	delete(s.notUsed, dh)
	delete(s.used, dh)
}

func (s *Store) Len() int {
	return len(s.used) + len(s.notUsed)
}
