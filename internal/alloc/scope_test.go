package alloc

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/agbru/magcalc/internal/alloc/mocks"
	"github.com/agbru/magcalc/internal/words"
)

func TestScopeReleasesTemporaries(t *testing.T) {
	t.Parallel()
	p := NewPool(Options{})
	sc := NewScope(p)

	a, _ := sc.Alloc(3)
	b, _ := sc.Alloc(9)
	kept, _ := sc.Alloc(5)
	sc.Keep(kept)
	if sc.Len() != 2 {
		t.Fatalf("Len = %d, want 2", sc.Len())
	}
	sc.Free(a)
	if sc.Len() != 1 {
		t.Fatalf("Len after Free = %d, want 1", sc.Len())
	}
	sc.Release()
	_ = b

	s := p.Stats()
	if s.LiveWords != uint64(cap(kept)) {
		t.Errorf("LiveWords = %d, want only the kept buffer (%d)", s.LiveWords, cap(kept))
	}
	if s.Frees != 2 {
		t.Errorf("Frees = %d, want 2", s.Frees)
	}
}

func TestScopeIgnoresBorrowedBuffers(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	a := mocks.NewMockAllocator(ctrl)
	sc := NewScope(a)

	borrowed := []words.Word{1, 2, 3}
	sc.Free(borrowed) // not tracked: no Free call expected
	sc.Track(nil)
	sc.Release()
}

func TestScopeAllocError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	a := mocks.NewMockAllocator(ctrl)
	sc := NewScope(a)

	first := make([]words.Word, 4)
	boom := errors.New("exhausted")
	gomock.InOrder(
		a.EXPECT().Allocate(4).Return(first, nil),
		a.EXPECT().Allocate(8).Return(nil, boom),
		a.EXPECT().Free(first),
	)

	if _, err := sc.Alloc(4); err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Alloc(8); !errors.Is(err, boom) {
		t.Fatalf("Alloc error = %v, want %v", err, boom)
	}
	sc.Release()
}

func TestScopeDistinguishesSubslices(t *testing.T) {
	t.Parallel()
	p := NewPool(Options{})
	sc := NewScope(p)
	buf, _ := sc.Alloc(8)
	// A view into the middle of a tracked buffer is not the buffer itself.
	sc.Free(buf[2:])
	if sc.Len() != 1 {
		t.Fatalf("Len = %d, want 1", sc.Len())
	}
	sc.Release()
	if s := p.Stats(); s.LiveWords != 0 {
		t.Errorf("LiveWords = %d, want 0", s.LiveWords)
	}
}
