package brand

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/mymoto/themekit/internal/colour"
)

var testTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testBrand(id, name, hex string) Brand {
	return Brand{
		ID:           id,
		Name:         name,
		PrimaryColor: hex,
		Curve:        colour.CurveLinear,
		Typography:   DefaultTypography(),
		Scale:        colour.GenerateRamp(colour.MustParseHex(hex), colour.CurveLinear),
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

// storeContract exercises the behaviour every Store must share.
func storeContract(newStore func() Store) {
	ctx := context.Background()
	store := newStore()

	Convey("An empty store lists nothing and has no active brand", func() {
		brands, err := store.List(ctx)
		So(err, ShouldBeNil)
		So(brands, ShouldBeEmpty)

		active, err := store.Active(ctx)
		So(err, ShouldBeNil)
		So(active, ShouldEqual, "")
	})

	Convey("Saved brands can be read back", func() {
		b := testBrand("b1", "Sport", "#3a7bd5")
		So(store.Save(ctx, b), ShouldBeNil)

		got, err := store.Get(ctx, "b1")
		So(err, ShouldBeNil)
		So(got.Name, ShouldEqual, "Sport")
		So(got.PrimaryColor, ShouldEqual, "#3a7bd5")
		So(got.Scale, ShouldResemble, b.Scale)
		So(got.CreatedAt.Equal(testTime), ShouldBeTrue)

		Convey("and saving again replaces them", func() {
			b.Name = "Sport Line"
			So(store.Save(ctx, b), ShouldBeNil)

			brands, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(brands, ShouldHaveLength, 1)
			So(brands[0].Name, ShouldEqual, "Sport Line")
		})

		Convey("and deleted", func() {
			So(store.Delete(ctx, "b1"), ShouldBeNil)
			_, err := store.Get(ctx, "b1")
			So(errors.Is(err, ErrBrandNotFound), ShouldBeTrue)
		})
	})

	Convey("List puts the default brand first, then sorts by name", func() {
		def := testBrand("d", "Zeta", "#e11d48")
		def.IsDefault = true
		So(store.Save(ctx, testBrand("b", "beta", "#00ff00")), ShouldBeNil)
		So(store.Save(ctx, def), ShouldBeNil)
		So(store.Save(ctx, testBrand("a", "Alpha", "#0000ff")), ShouldBeNil)

		brands, err := store.List(ctx)
		So(err, ShouldBeNil)
		So(brands, ShouldHaveLength, 3)
		So(brands[0].ID, ShouldEqual, "d")
		So(brands[1].ID, ShouldEqual, "a")
		So(brands[2].ID, ShouldEqual, "b")
	})

	Convey("Missing brands are reported", func() {
		_, err := store.Get(ctx, "nope")
		So(errors.Is(err, ErrBrandNotFound), ShouldBeTrue)
		So(errors.Is(store.Delete(ctx, "nope"), ErrBrandNotFound), ShouldBeTrue)
		So(errors.Is(store.SetActive(ctx, "nope"), ErrBrandNotFound), ShouldBeTrue)
	})

	Convey("Invalid brands are rejected", func() {
		b := testBrand("bad", "Bad", "#3a7bd5")
		b.PrimaryColor = "red"
		So(errors.Is(store.Save(ctx, b), ErrInvalidBrand), ShouldBeTrue)
	})

	Convey("The active brand is recorded and cleared on delete", func() {
		So(store.Save(ctx, testBrand("b1", "Sport", "#3a7bd5")), ShouldBeNil)
		So(store.SetActive(ctx, "b1"), ShouldBeNil)

		active, err := store.Active(ctx)
		So(err, ShouldBeNil)
		So(active, ShouldEqual, "b1")

		So(store.Delete(ctx, "b1"), ShouldBeNil)
		active, err = store.Active(ctx)
		So(err, ShouldBeNil)
		So(active, ShouldEqual, "")
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("MemoryStore", t, func() {
		storeContract(func() Store { return NewMemoryStore() })

		Convey("returns copies that do not alias stored scales", func() {
			ctx := context.Background()
			store := NewMemoryStore()
			So(store.Save(ctx, testBrand("b1", "Sport", "#3a7bd5")), ShouldBeNil)

			got, err := store.Get(ctx, "b1")
			So(err, ShouldBeNil)
			got.Scale[1] = colour.RGB{}

			again, err := store.Get(ctx, "b1")
			So(err, ShouldBeNil)
			So(again.Scale[1], ShouldNotResemble, colour.RGB{})
		})
	})
}

func TestFileStore(t *testing.T) {
	Convey("FileStore", t, func() {
		fs := afero.NewMemMapFs()
		storeContract(func() Store { return NewFileStore(fs, "/data/themekit") })

		Convey("persists across instances", func() {
			ctx := context.Background()
			first := NewFileStore(fs, "/data/themekit")
			So(first.Save(ctx, testBrand("b1", "Sport", "#3a7bd5")), ShouldBeNil)
			So(first.SetActive(ctx, "b1"), ShouldBeNil)

			second := NewFileStore(fs, "/data/themekit")
			got, err := second.Get(ctx, "b1")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Sport")

			active, err := second.Active(ctx)
			So(err, ShouldBeNil)
			So(active, ShouldEqual, "b1")

			Convey("as a versioned JSON document with hex scales", func() {
				data, err := afero.ReadFile(fs, "/data/themekit/brands.json")
				So(err, ShouldBeNil)

				var raw map[string]any
				So(json.Unmarshal(data, &raw), ShouldBeNil)
				So(raw["version"], ShouldEqual, float64(1))
				So(string(data), ShouldContainSubstring, `"1": "#`)

				exists, err := afero.Exists(fs, "/data/themekit/brands.json.tmp")
				So(err, ShouldBeNil)
				So(exists, ShouldBeFalse)
			})
		})

		Convey("reports a corrupt document", func() {
			So(afero.WriteFile(fs, "/data/themekit/brands.json", []byte("{not json"), 0o600), ShouldBeNil)

			_, err := NewFileStore(fs, "/data/themekit").List(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to parse")
		})

		Convey("refuses documents from a newer version", func() {
			So(afero.WriteFile(fs, "/data/themekit/brands.json", []byte(`{"version": 99, "brands": []}`), 0o600), ShouldBeNil)

			_, err := NewFileStore(fs, "/data/themekit").List(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unsupported version")
		})
	})
}
