package memstore

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string
	Tags []string
}

func newItemStore() *Store[string, item] {
	return New(func(i item) string { return strings.ToLower(i.Name) },
		WithClone[string](func(i item) item {
			i.Tags = append([]string(nil), i.Tags...)
			return i
		}))
}

func TestStore_InsertAndFind(t *testing.T) {
	s := newItemStore()
	require.NoError(t, s.Insert(item{Name: "a", Tags: []string{"x"}}))
	require.NoError(t, s.Insert(item{Name: "b"}))

	a, ok := s.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, a.Tags)

	b, ok := s.FindByID("b")
	require.True(t, ok)
	assert.Equal(t, "b", b.Name)

	_, ok = s.FindByID("c")
	assert.False(t, ok)
	assert.True(t, s.ExistsByID("a"))
	assert.False(t, s.ExistsByID("c"))
}

func TestStore_InsertDuplicate(t *testing.T) {
	s := newItemStore()
	require.NoError(t, s.Insert(item{Name: "a", Tags: []string{"first"}}))

	err := s.Insert(item{Name: "A", Tags: []string{"second"}})
	require.ErrorIs(t, err, ErrAlreadyExists)

	got, _ := s.FindByID("a")
	assert.Equal(t, []string{"first"}, got.Tags, "duplicate insert must not overwrite")
	assert.Equal(t, 1, s.Len())
}

func TestStore_UpdateMissing(t *testing.T) {
	s := newItemStore()
	require.NoError(t, s.Insert(item{Name: "a"}))

	err := s.Update(item{Name: "b"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []item{{Name: "a", Tags: nil}}, s.All())
}

func TestStore_DeleteMissing(t *testing.T) {
	s := newItemStore()
	require.NoError(t, s.Insert(item{Name: "a"}))

	require.ErrorIs(t, s.Delete("zzz"), ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestStore_UpdateKeepsPosition(t *testing.T) {
	s := newItemStore()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(item{Name: n}))
	}
	require.NoError(t, s.Update(item{Name: "b", Tags: []string{"new"}}))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
	assert.Equal(t, []string{"new"}, all[1].Tags)
	assert.Equal(t, "c", all[2].Name)
}

func TestStore_Delete(t *testing.T) {
	s := newItemStore()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(item{Name: n}))
	}
	require.NoError(t, s.Delete("b"))

	names := []string{}
	for _, i := range s.All() {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)
	assert.False(t, s.ExistsByID("b"))
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := newItemStore()
	tags := []string{"x"}
	require.NoError(t, s.Insert(item{Name: "a", Tags: tags}))
	tags[0] = "mutated"

	got, _ := s.FindByID("a")
	got.Tags[0] = "also mutated"

	again, _ := s.FindByID("a")
	assert.Equal(t, []string{"x"}, again.Tags)
}

func TestStore_FilterEmptyIsNonNil(t *testing.T) {
	s := newItemStore()
	out := s.Filter(func(item) bool { return true })
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestStore_ResetRejectsDuplicates(t *testing.T) {
	s := newItemStore()
	require.NoError(t, s.Insert(item{Name: "old"}))

	rejected := s.Reset([]item{{Name: "a"}, {Name: "b"}, {Name: "A"}})
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[2], ErrAlreadyExists)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.ExistsByID("old"))
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s := newItemStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Insert(item{Name: string(rune('a' + i%26))})
			_ = s.All()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, s.Len())
}
