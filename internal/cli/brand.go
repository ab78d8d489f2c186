package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
	"github.com/mymoto/themekit/internal/export"
)

var (
	// Brand create/update flags
	brandName      string
	brandColor     string
	brandFromImage string
	brandCurve     string
	brandFont      string
	brandBaseSize  float64
	brandRatio     string
	brandUse       bool

	// Brand show flags
	brandPreview bool

	// Brand export flags
	exportFormat   string
	exportOutput   string
	exportCompress bool
)

func newBrandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Manage brands",
		Long: `Manage the brand set: each brand has a primary colour, a lightness curve,
a generated 12-step scale and typography settings. One brand is active at a time
and the default brand cannot be deleted.`,
	}

	cmd.AddCommand(
		newBrandListCmd(),
		newBrandShowCmd(),
		newBrandCreateCmd(),
		newBrandUpdateCmd(),
		newBrandDeleteCmd(),
		newBrandUseCmd(),
		newBrandSetStepCmd(),
		newBrandRegenerateCmd(),
		newBrandExportCmd(),
		newBrandImportCmd(),
	)
	return cmd
}

func newBrandListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List brands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *brand.Service) error {
				active, _ := svc.Active()
				table := NewTable("", "NAME", "PRIMARY", "CURVE", "ID")
				for _, b := range svc.List() {
					marker := ""
					if b.ID == active.ID {
						marker = "*"
					}
					name := b.Name
					if b.IsDefault {
						name += " (default)"
					}
					table.AddRow(marker, name, b.PrimaryColor, string(b.Curve), b.ID)
				}
				fmt.Fprint(cmd.OutOrStdout(), table.Render())
				return nil
			})
		},
	}
}

func newBrandShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [brand]",
		Short: "Show a brand (default: the active brand)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *brand.Service) error {
				b, err := resolveBrand(svc, args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "name:    %s\n", b.Name)
				fmt.Fprintf(out, "id:      %s\n", b.ID)
				fmt.Fprintf(out, "primary: %s\n", b.PrimaryColor)
				fmt.Fprintf(out, "curve:   %s\n", b.Curve)
				fmt.Fprintf(out, "font:    %s, %gpx base, ratio %g\n\n", b.Typography.FontFamily, b.Typography.BaseSize, b.Typography.Ratio)
				fmt.Fprint(out, colour.FormatScale(b.Scale, brandPreview && colourEnabled(out)))

				fmt.Fprintln(out)
				sizes := NewTable("SIZE", "PX")
				for _, s := range b.Typography.Sizes() {
					sizes.AddRow(s.Name, strconv.FormatFloat(s.Px, 'f', -1, 64))
				}
				fmt.Fprint(out, sizes.Render())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&brandPreview, "preview", false, "show colour previews in terminal")
	return cmd
}

func newBrandCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a brand",
		Long: `Create a brand from a primary colour or a logo image.

Examples:
  themekit brand create "Sport Line" --color "#3a7bd5" --curve exponential
  themekit brand create Touring --from-image touring-logo.webp --ratio golden --use`,
		Args: cobra.ExactArgs(1),
		RunE: runBrandCreate,
	}
	addBrandFlags(cmd)
	cmd.Flags().StringVar(&brandFromImage, "from-image", "", "take the primary colour from an image")
	cmd.Flags().BoolVar(&brandUse, "use", false, "make the new brand active")
	return cmd
}

func runBrandCreate(cmd *cobra.Command, args []string) error {
	var colourArgs []string
	if brandColor != "" {
		colourArgs = []string{brandColor}
	}
	primary, err := resolveBaseColour(cmd.Context(), colourArgs, brandFromImage)
	if err != nil {
		return err
	}
	curve, err := resolveCurve(brandCurve)
	if err != nil {
		return err
	}
	typography, err := typographyFromFlags(cmd, brand.Typography{})
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *brand.Service) error {
		b, err := svc.Create(cmd.Context(), brand.Params{
			Name:         args[0],
			PrimaryColor: primary.Hex(),
			Curve:        curve,
			Typography:   typography,
		})
		if err != nil {
			return err
		}
		if brandUse {
			if _, err := svc.Switch(cmd.Context(), b.ID); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created brand %s (%s)\n", b.Name, b.ID)
		return nil
	})
}

func newBrandUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <brand>",
		Short: "Update a brand",
		Long: `Update the given fields of a brand. Changing the colour or curve regenerates
the scale, discarding step overrides.`,
		Args: cobra.ExactArgs(1),
		RunE: runBrandUpdate,
	}
	addBrandFlags(cmd)
	cmd.Flags().StringVar(&brandName, "name", "", "new brand name")
	return cmd
}

func runBrandUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var curve colour.Curve
	if flags.Changed("curve") {
		c, err := colour.ParseCurve(brandCurve)
		if err != nil {
			return err
		}
		curve = c
	}

	return withService(cmd.Context(), func(svc *brand.Service) error {
		target, err := svc.Find(args[0])
		if err != nil {
			return err
		}
		typography, err := typographyFromFlags(cmd, target.Typography)
		if err != nil {
			return err
		}

		b, err := svc.Update(cmd.Context(), target.ID, func(b *brand.Brand) error {
			if flags.Changed("name") {
				b.Name = brandName
			}
			if flags.Changed("color") {
				b.PrimaryColor = brandColor
			}
			if flags.Changed("curve") {
				b.Curve = curve
			}
			b.Typography = typography
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated brand %s\n", b.Name)
		return nil
	})
}

func addBrandFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&brandColor, "color", "", "primary colour as hex")
	cmd.Flags().StringVarP(&brandCurve, "curve", "c", "", "lightness curve")
	cmd.Flags().StringVar(&brandFont, "font", "", "font family")
	cmd.Flags().Float64Var(&brandBaseSize, "base-size", 0, "base font size in px")
	cmd.Flags().StringVar(&brandRatio, "ratio", "", "type scale ratio, a number or a preset such as major-third")
}

// typographyFromFlags applies changed typography flags on top of base.
func typographyFromFlags(cmd *cobra.Command, base brand.Typography) (brand.Typography, error) {
	flags := cmd.Flags()
	if flags.Changed("font") {
		base.FontFamily = brandFont
	}
	if flags.Changed("base-size") {
		base.BaseSize = brandBaseSize
	}
	if flags.Changed("ratio") {
		ratio, err := brand.ParseRatio(brandRatio)
		if err != nil {
			return brand.Typography{}, err
		}
		base.Ratio = ratio
	}
	return base, nil
}

func newBrandDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <brand>",
		Aliases: []string{"rm"},
		Short:   "Delete a brand",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *brand.Service) error {
				b, err := svc.Find(args[0])
				if err != nil {
					return err
				}
				if err := svc.Delete(cmd.Context(), b.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted brand %s\n", b.Name)
				return nil
			})
		},
	}
}

func newBrandUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <brand>",
		Short: "Make a brand active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *brand.Service) error {
				b, err := svc.Find(args[0])
				if err != nil {
					return err
				}
				if _, err := svc.Switch(cmd.Context(), b.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active brand is now %s\n", b.Name)
				return nil
			})
		},
	}
}

func newBrandSetStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-step <brand> <step> <color>",
		Short: "Override one step of a brand's scale",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", colour.ErrInvalidStepCount, args[1])
			}
			return withService(cmd.Context(), func(svc *brand.Service) error {
				b, err := svc.Find(args[0])
				if err != nil {
					return err
				}
				b, err = svc.SetStep(cmd.Context(), b.ID, step, args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s step %d is now %s\n", b.Name, step, b.Scale[step].Hex())
				return nil
			})
		},
	}
}

func newBrandRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <brand>",
		Short: "Rebuild a brand's scale from its primary colour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *brand.Service) error {
				b, err := svc.Find(args[0])
				if err != nil {
					return err
				}
				if _, err := svc.Regenerate(cmd.Context(), b.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "regenerated scale for %s\n", b.Name)
				return nil
			})
		},
	}
}

func newBrandExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [brand]",
		Short: "Export a brand (default: the active brand)",
		Long: `Export a brand as CSS custom properties, a Tailwind config, a JSON document
with contrast data or a PNG swatch strip.

Examples:
  themekit brand export --format css
  themekit brand export "Sport Line" --format tailwind --output web/
  themekit brand export --format json --compress --output -`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBrandExport,
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "css", "export format (css, tailwind, json, png)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file or directory, - for stdout (default: current directory)")
	cmd.Flags().BoolVar(&exportCompress, "compress", false, "compress the output with xz")
	return cmd
}

func runBrandExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *brand.Service) error {
		b, err := resolveBrand(svc, args)
		if err != nil {
			return err
		}

		file, err := newGenerator().Generate(b, format)
		if err != nil {
			return err
		}
		if exportCompress {
			if file, err = export.CompressFile(file); err != nil {
				return err
			}
		}

		if exportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(file.Data)
			return err
		}

		path := exportOutput
		if path == "" {
			path = file.Name
		} else if isDir(path) {
			path = filepath.Join(path, file.Name)
		}

		if dir := filepath.Dir(path); dir != "." {
			if err := appFs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := afero.WriteFile(appFs, path, file.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		appLogger.Debug("exported brand", "brand", b.Name, "format", format, "bytes", len(file.Data))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	})
}

func newBrandImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a brand from a JSON export (optionally xz-compressed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(appFs, args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			doc, err := export.ReadDocument(bytes.NewReader(data))
			if err != nil {
				return err
			}
			params := doc.Params()
			if cmd.Flags().Changed("name") {
				params.Name = brandName
			}

			return withService(cmd.Context(), func(svc *brand.Service) error {
				b, err := svc.Create(cmd.Context(), params)
				if err != nil {
					return err
				}
				if brandUse {
					if _, err := svc.Switch(cmd.Context(), b.ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported brand %s (%s)\n", b.Name, b.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&brandName, "name", "", "name for the imported brand")
	cmd.Flags().BoolVar(&brandUse, "use", false, "make the imported brand active")
	return cmd
}

// isDir reports whether path names a directory, existing or marked by a trailing separator.
func isDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := appFs.Stat(path)
	return err == nil && info.IsDir()
}

// resolveBrand finds the brand named by args, or the active brand.
func resolveBrand(svc *brand.Service, args []string) (brand.Brand, error) {
	if len(args) == 1 {
		return svc.Find(args[0])
	}
	b, ok := svc.Active()
	if !ok {
		return brand.Brand{}, fmt.Errorf("%w: no active brand", brand.ErrBrandNotFound)
	}
	return b, nil
}
