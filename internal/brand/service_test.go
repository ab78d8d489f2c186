package brand

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mymoto/themekit/internal/colour"
)

func nextEvent(ch <-chan Event) (Event, bool) {
	select {
	case ev := <-ch:
		return ev, true
	case <-time.After(time.Second):
		return Event{}, false
	}
}

// activeFailStore is a MemoryStore whose SetActive fails while failActive is set.
type activeFailStore struct {
	*MemoryStore
	failActive bool
}

func (s *activeFailStore) SetActive(ctx context.Context, id string) error {
	if s.failActive {
		return errBackendDown
	}
	return s.MemoryStore.SetActive(ctx, id)
}

func TestService(t *testing.T) {
	Convey("Service", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()
		svc := NewService(store, nil)
		So(svc.Load(ctx), ShouldBeNil)

		Convey("seeds and activates the default brand", func() {
			brands := svc.List()
			So(brands, ShouldHaveLength, 1)
			So(brands[0].Name, ShouldEqual, DefaultBrandName)
			So(brands[0].IsDefault, ShouldBeTrue)
			So(brands[0].Scale.Validate(), ShouldBeNil)

			active, ok := svc.Active()
			So(ok, ShouldBeTrue)
			So(active.ID, ShouldEqual, brands[0].ID)

			stored, err := store.Active(ctx)
			So(err, ShouldBeNil)
			So(stored, ShouldEqual, active.ID)

			Convey("and does not seed it twice", func() {
				again := NewService(store, nil)
				So(again.Load(ctx), ShouldBeNil)
				So(again.List(), ShouldHaveLength, 1)
			})
		})

		Convey("creates brands with a generated scale", func() {
			b, err := svc.Create(ctx, Params{Name: " Sport ", PrimaryColor: "3A7BD5", Curve: colour.CurveExponential})
			So(err, ShouldBeNil)
			So(b.ID, ShouldNotBeEmpty)
			So(b.Name, ShouldEqual, "Sport")
			So(b.PrimaryColor, ShouldEqual, "#3a7bd5")
			So(b.IsDefault, ShouldBeFalse)
			So(b.Typography, ShouldResemble, DefaultTypography())
			So(b.Scale, ShouldResemble, colour.GenerateRamp(colour.MustParseHex("#3a7bd5"), colour.CurveExponential))

			stored, err := store.Get(ctx, b.ID)
			So(err, ShouldBeNil)
			So(stored.Scale, ShouldResemble, b.Scale)

			Convey("and finds them by name", func() {
				found, err := svc.Find("sport")
				So(err, ShouldBeNil)
				So(found.ID, ShouldEqual, b.ID)
			})

			Convey("rejects a duplicate name", func() {
				_, err := svc.Create(ctx, Params{Name: "SPORT", PrimaryColor: "#000000"})
				So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)
			})

			Convey("regenerates the scale when the primary colour changes", func() {
				updated, err := svc.Update(ctx, b.ID, func(b *Brand) error {
					b.PrimaryColor = "#E11D48"
					return nil
				})
				So(err, ShouldBeNil)
				So(updated.PrimaryColor, ShouldEqual, "#e11d48")
				So(updated.Scale, ShouldResemble, colour.GenerateRamp(colour.MustParseHex("#e11d48"), colour.CurveExponential))
				So(updated.CreatedAt.Equal(b.CreatedAt), ShouldBeTrue)
			})

			Convey("regenerates the scale when the curve changes", func() {
				updated, err := svc.Update(ctx, b.ID, func(b *Brand) error {
					b.Curve = colour.CurveAccessibilityAAA
					return nil
				})
				So(err, ShouldBeNil)
				So(updated.Scale, ShouldResemble, colour.GenerateRamp(colour.MustParseHex("#3a7bd5"), colour.CurveAccessibilityAAA))
			})

			Convey("keeps identity fields on update", func() {
				updated, err := svc.Update(ctx, b.ID, func(b *Brand) error {
					b.ID = "hijack"
					b.IsDefault = true
					b.Name = "Sport Line"
					return nil
				})
				So(err, ShouldBeNil)
				So(updated.ID, ShouldEqual, b.ID)
				So(updated.IsDefault, ShouldBeFalse)
				So(updated.Name, ShouldEqual, "Sport Line")
			})

			Convey("rejects invalid updates without changing state", func() {
				_, err := svc.Update(ctx, b.ID, func(b *Brand) error {
					b.PrimaryColor = "blue"
					return nil
				})
				So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)

				current, err := svc.Get(b.ID)
				So(err, ShouldBeNil)
				So(current.PrimaryColor, ShouldEqual, "#3a7bd5")
			})

			Convey("overrides a single step and regenerates on request", func() {
				updated, err := svc.SetStep(ctx, b.ID, 6, "#123456")
				So(err, ShouldBeNil)
				So(updated.Scale[6].Hex(), ShouldEqual, "#123456")
				So(updated.Scale[5], ShouldResemble, b.Scale[5])

				regenerated, err := svc.Regenerate(ctx, b.ID)
				So(err, ShouldBeNil)
				So(regenerated.Scale, ShouldResemble, b.Scale)
			})

			Convey("rejects bad step overrides", func() {
				_, err := svc.SetStep(ctx, b.ID, 13, "#123456")
				So(errors.Is(err, colour.ErrInvalidStepCount), ShouldBeTrue)

				_, err = svc.SetStep(ctx, b.ID, 3, "#12")
				So(errors.Is(err, colour.ErrInvalidColorFormat), ShouldBeTrue)
			})

			Convey("switches the active brand", func() {
				_, err := svc.Switch(ctx, b.ID)
				So(err, ShouldBeNil)

				active, _ := svc.Active()
				So(active.ID, ShouldEqual, b.ID)

				Convey("and falls back to the default when it is deleted", func() {
					So(svc.Delete(ctx, b.ID), ShouldBeNil)

					active, ok := svc.Active()
					So(ok, ShouldBeTrue)
					So(active.IsDefault, ShouldBeTrue)

					_, err := store.Get(ctx, b.ID)
					So(errors.Is(err, ErrBrandNotFound), ShouldBeTrue)
				})
			})
		})

		Convey("rejects non-finite typography", func() {
			_, err := svc.Create(ctx, Params{Name: "Loose", PrimaryColor: "#000000", Typography: Typography{Ratio: math.NaN()}})
			So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)

			_, err = svc.Create(ctx, Params{Name: "Huge", PrimaryColor: "#000000", Typography: Typography{BaseSize: math.Inf(1)}})
			So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)
			So(svc.List(), ShouldHaveLength, 1)
		})

		Convey("lets the update function read the service", func() {
			b, err := svc.Create(ctx, Params{Name: "Reader", PrimaryColor: "#3a7bd5"})
			So(err, ShouldBeNil)

			done := make(chan error, 1)
			go func() {
				_, err := svc.Update(ctx, b.ID, func(next *Brand) error {
					if _, err := svc.Get(next.ID); err != nil {
						return err
					}
					_, err := svc.Find("reader")
					next.Name = "Reader Two"
					return err
				})
				done <- err
			}()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(time.Second):
				So("Update did not return", ShouldBeEmpty)
			}
			current, _ := svc.Get(b.ID)
			So(current.Name, ShouldEqual, "Reader Two")
		})

		Convey("reapplies an update when the brand changes underneath it", func() {
			b, err := svc.Create(ctx, Params{Name: "Racer", PrimaryColor: "#3a7bd5"})
			So(err, ShouldBeNil)

			calls := 0
			updated, err := svc.Update(ctx, b.ID, func(next *Brand) error {
				calls++
				if calls == 1 {
					if _, err := svc.Update(ctx, b.ID, func(inner *Brand) error {
						inner.Typography.FontFamily = "Nested"
						return nil
					}); err != nil {
						return err
					}
				}
				next.Name = "Racer Two"
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 2)
			So(updated.Name, ShouldEqual, "Racer Two")
			So(updated.Typography.FontFamily, ShouldEqual, "Nested")
		})

		Convey("rejects invalid new brands", func() {
			_, err := svc.Create(ctx, Params{Name: "Bad", PrimaryColor: "#ggg000"})
			So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)
			So(errors.Is(err, colour.ErrInvalidColorFormat), ShouldBeTrue)

			_, err = svc.Create(ctx, Params{Name: "", PrimaryColor: "#000000"})
			So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)

			_, err = svc.Create(ctx, Params{Name: "Curvy", PrimaryColor: "#000000", Curve: "sigmoid"})
			So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)
		})

		Convey("keeps a supplied scale", func() {
			scale := colour.GenerateRamp(colour.MustParseHex("#0f766e"), colour.CurveLinear)
			scale[6] = colour.MustParseHex("#123456")

			b, err := svc.Create(ctx, Params{Name: "Imported", PrimaryColor: "#0f766e", Scale: scale})
			So(err, ShouldBeNil)
			So(b.Scale[6].Hex(), ShouldEqual, "#123456")

			partial := colour.Scale{1: colour.MustParseHex("#ffffff")}
			_, err = svc.Create(ctx, Params{Name: "Partial", PrimaryColor: "#0f766e", Scale: partial})
			So(errors.Is(err, ErrInvalidBrand), ShouldBeTrue)
		})

		Convey("refuses to delete the default brand", func() {
			active, _ := svc.Active()
			So(errors.Is(svc.Delete(ctx, active.ID), ErrDefaultBrandDelete), ShouldBeTrue)
		})

		Convey("reports unknown brands", func() {
			_, err := svc.Switch(ctx, "missing")
			So(errors.Is(err, ErrBrandNotFound), ShouldBeTrue)
			So(errors.Is(svc.Delete(ctx, "missing"), ErrBrandNotFound), ShouldBeTrue)
			_, err = svc.Get("missing")
			So(errors.Is(err, ErrBrandNotFound), ShouldBeTrue)
		})

		Convey("notifies subscribers after changes", func() {
			events, cancel := svc.Subscribe(8)
			defer cancel()

			b, err := svc.Create(ctx, Params{Name: "Touring", PrimaryColor: "#0f766e"})
			So(err, ShouldBeNil)
			_, err = svc.Switch(ctx, b.ID)
			So(err, ShouldBeNil)
			So(svc.Delete(ctx, b.ID), ShouldBeNil)

			want := []EventType{EventCreated, EventSwitched, EventDeleted, EventSwitched}
			for _, typ := range want {
				ev, ok := nextEvent(events)
				So(ok, ShouldBeTrue)
				So(ev.Type, ShouldEqual, typ)
			}

			Convey("and stops after cancel", func() {
				cancel()
				_, open := <-events
				So(open, ShouldBeFalse)
			})
		})

		Convey("drops events for a full subscriber instead of blocking", func() {
			events, cancel := svc.Subscribe(1)
			defer cancel()

			for _, name := range []string{"One", "Two", "Three"} {
				_, err := svc.Create(ctx, Params{Name: name, PrimaryColor: "#445566"})
				So(err, ShouldBeNil)
			}

			ev, ok := nextEvent(events)
			So(ok, ShouldBeTrue)
			So(ev.Brand.Name, ShouldEqual, "One")
		})

		Convey("keeps the default active when storing the switch fails", func() {
			failing := &activeFailStore{MemoryStore: NewMemoryStore()}
			svc := NewService(failing, nil)
			So(svc.Load(ctx), ShouldBeNil)

			b, err := svc.Create(ctx, Params{Name: "Doomed", PrimaryColor: "#0f766e"})
			So(err, ShouldBeNil)
			_, err = svc.Switch(ctx, b.ID)
			So(err, ShouldBeNil)

			events, cancel := svc.Subscribe(4)
			defer cancel()

			failing.failActive = true
			err = svc.Delete(ctx, b.ID)
			So(errors.Is(err, errBackendDown), ShouldBeTrue)

			active, ok := svc.Active()
			So(ok, ShouldBeTrue)
			So(active.IsDefault, ShouldBeTrue)

			_, err = failing.Get(ctx, b.ID)
			So(errors.Is(err, ErrBrandNotFound), ShouldBeTrue)

			for _, typ := range []EventType{EventDeleted, EventSwitched} {
				ev, ok := nextEvent(events)
				So(ok, ShouldBeTrue)
				So(ev.Type, ShouldEqual, typ)
			}

			Convey("and a reload falls back to the default", func() {
				failing.failActive = false
				reloaded := NewService(failing, nil)
				So(reloaded.Load(ctx), ShouldBeNil)
				active, ok := reloaded.Active()
				So(ok, ShouldBeTrue)
				So(active.IsDefault, ShouldBeTrue)
			})
		})

		Convey("recovers when the stored active brand is gone", func() {
			b, err := svc.Create(ctx, Params{Name: "Ghost", PrimaryColor: "#111111"})
			So(err, ShouldBeNil)
			_, err = svc.Switch(ctx, b.ID)
			So(err, ShouldBeNil)
			So(store.Delete(ctx, b.ID), ShouldBeNil)

			reloaded := NewService(store, nil)
			So(reloaded.Load(ctx), ShouldBeNil)
			active, ok := reloaded.Active()
			So(ok, ShouldBeTrue)
			So(active.IsDefault, ShouldBeTrue)
		})
	})
}
