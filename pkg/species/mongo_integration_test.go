//go:build integration

package species

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Run with: ARBOR_TEST_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/species
func TestMongoCatalogSeedAndRead(t *testing.T) {
	uri := os.Getenv("ARBOR_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ARBOR_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := "arbor_test_" + uuid.NewString()[:8]
	c, err := ConnectMongo(ctx, uri, db)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = c.coll.Database().Drop(ctx)
		_ = c.Close(ctx)
	}()

	n, err := c.Seed(ctx, Default())
	if err != nil {
		t.Fatal(err)
	}
	if n != Default().Len() {
		t.Errorf("seeded %d, want %d", n, Default().Len())
	}
	// Seeding twice upserts instead of duplicating.
	if _, err := c.Seed(ctx, Default()); err != nil {
		t.Fatal(err)
	}
	list, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != Default().Len() {
		t.Errorf("List() returned %d species", len(list))
	}

	want, _ := Default().Get(ctx, "scots-pine")
	got, err := c.Get(ctx, "scots-pine")
	if err != nil {
		t.Fatal(err)
	}
	if got.Axiom != want.Axiom || got.Rules["A"] != want.Rules["A"] {
		t.Errorf("round trip mismatch: %+v vs %+v", got, want)
	}
	if _, err := c.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeSpeciesNotFound) {
		t.Errorf("Get(missing) = %v", err)
	}
}
