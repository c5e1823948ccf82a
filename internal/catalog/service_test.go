package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCarRepo struct {
	cars   map[uint]*Car
	nextID uint
}

func newFakeCarRepo() *fakeCarRepo {
	return &fakeCarRepo{cars: map[uint]*Car{}, nextID: 1}
}

func (f *fakeCarRepo) Create(_ context.Context, c *Car) error {
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	}
	cp := *c
	f.cars[c.ID] = &cp
	return nil
}

func (f *fakeCarRepo) FindByID(_ context.Context, id uint) (*Car, error) {
	c, ok := f.cars[id]
	if !ok {
		return nil, fmt.Errorf("car %d: %w", id, apperr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCarRepo) List(_ context.Context) ([]Car, error) {
	out := make([]Car, 0, len(f.cars))
	for id := uint(1); id < f.nextID; id++ {
		if c, ok := f.cars[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCarRepo) Update(_ context.Context, c *Car) error {
	cur, ok := f.cars[c.ID]
	if !ok {
		return fmt.Errorf("car %d: %w", c.ID, apperr.ErrNotFound)
	}
	if cur.Version != c.Version {
		return fmt.Errorf("car %d was modified concurrently: %w", c.ID, apperr.ErrConflict)
	}
	cp := *c
	cp.Version++
	f.cars[c.ID] = &cp
	c.Version++
	return nil
}

func (f *fakeCarRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.cars[id]; !ok {
		return fmt.Errorf("car %d: %w", id, apperr.ErrNotFound)
	}
	delete(f.cars, id)
	return nil
}

func (f *fakeCarRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.cars)), nil
}

type fakeResCounter struct {
	counts map[uint]int64
}

func (f *fakeResCounter) CountByCar(_ context.Context, carID uint) (int64, error) {
	return f.counts[carID], nil
}

func TestCarCRUD(t *testing.T) {
	repo := newFakeCarRepo()
	svc := NewService(repo, &fakeResCounter{counts: map[uint]int64{}})
	ctx := context.Background()

	c, err := svc.Create(ctx, CarInput{Brand: "Peugeot", Model: "308", Year: 2019, PricePerDay: 4500})
	require.NoError(t, err)
	assert.Equal(t, uint(1), c.ID)
	assert.Equal(t, "PLN", c.Currency)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Peugeot", got.Brand)

	updated, err := svc.Update(ctx, c.ID, CarInput{Brand: "Peugeot", Model: "308 SW", Year: 2020, PricePerDay: 4700})
	require.NoError(t, err)
	assert.Equal(t, "308 SW", updated.Model)
	assert.Equal(t, int64(2), updated.Version)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCarValidation(t *testing.T) {
	svc := NewService(newFakeCarRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CarInput
	}{
		{"empty brand", CarInput{Brand: "", Model: "308", Year: 2019, PricePerDay: 4500}},
		{"empty model", CarInput{Brand: "Peugeot", Model: " ", Year: 2019, PricePerDay: 4500}},
		{"year too old", CarInput{Brand: "Peugeot", Model: "308", Year: 1900, PricePerDay: 4500}},
		{"negative price", CarInput{Brand: "Peugeot", Model: "308", Year: 2019, PricePerDay: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCarUpdateConflict(t *testing.T) {
	repo := newFakeCarRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, CarInput{Brand: "Honda", Model: "Civic", Year: 2021, PricePerDay: 5500})
	require.NoError(t, err)

	// another actor bumps the stored version between read and write
	repo.cars[c.ID].Version = 99

	_, err = svc.Update(ctx, c.ID, CarInput{Brand: "Honda", Model: "Civic", Year: 2021, PricePerDay: 6000})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCarDeleteGuardedByReservations(t *testing.T) {
	repo := newFakeCarRepo()
	svc := NewService(repo, &fakeResCounter{counts: map[uint]int64{1: 2}})
	ctx := context.Background()

	_, err := svc.Create(ctx, CarInput{Brand: "Ford", Model: "Focus", Year: 2019, PricePerDay: 4500})
	require.NoError(t, err)

	err = svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// still present
	_, err = svc.Get(ctx, 1)
	require.NoError(t, err)
}

func TestSeedIfEmpty(t *testing.T) {
	repo := newFakeCarRepo()
	ctx := context.Background()

	require.NoError(t, SeedIfEmpty(ctx, repo))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(14), n)

	// second boot is a no-op
	require.NoError(t, SeedIfEmpty(ctx, repo))
	n, _ = repo.Count(ctx)
	assert.Equal(t, int64(14), n)
}
