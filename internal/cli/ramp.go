package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
	"github.com/mymoto/themekit/internal/export"
	"github.com/mymoto/themekit/internal/image"
)

var (
	// Ramp command flags
	rampCurve     string
	rampFormat    string
	rampPreview   bool
	rampFromImage string
)

func newRampCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ramp [color]",
		Short: "Generate a 12-step colour ramp",
		Long: `Generate a 12-step lightness ramp from a base colour.

Hue and saturation come from the base colour; lightness follows the chosen
curve from step 1 (lightest) to step 12 (darkest).

Examples:
  # Linear ramp from the MyMoto red
  themekit ramp "#e11d48"

  # Ramp tuned for AAA text contrast, as JSON
  themekit ramp 3a7bd5 --curve accessibility-AAA --format json

  # Seed the ramp from a logo
  themekit ramp --from-image logo.png --preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRamp,
	}

	cmd.Flags().StringVarP(&rampCurve, "curve", "c", "", "lightness curve (default: ramp.curve from config)")
	cmd.Flags().StringVarP(&rampFormat, "format", "f", "hex", "output format (hex, json, css)")
	cmd.Flags().BoolVar(&rampPreview, "preview", false, "show colour previews in terminal")
	cmd.Flags().StringVar(&rampFromImage, "from-image", "", "take the base colour from an image")
	return cmd
}

func runRamp(cmd *cobra.Command, args []string) error {
	base, err := resolveBaseColour(cmd.Context(), args, rampFromImage)
	if err != nil {
		return err
	}

	curve, err := resolveCurve(rampCurve)
	if err != nil {
		return err
	}

	scale := colour.GenerateRamp(base, curve)
	appLogger.Debug("generated ramp", "base", base.Hex(), "curve", curve)

	out := cmd.OutOrStdout()
	switch rampFormat {
	case "hex":
		fmt.Fprint(out, colour.FormatScale(scale, rampPreview && colourEnabled(out)))
	case "json":
		data, err := json.MarshalIndent(scale, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "css":
		file, err := export.Generate(brand.Brand{
			Name:         "ramp",
			PrimaryColor: base.Hex(),
			Curve:        curve,
			Typography:   brand.DefaultTypography(),
			Scale:        scale,
		}, export.FormatCSS)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(file.Data))
	default:
		return fmt.Errorf("unsupported format: %s (supported: hex, json, css)", rampFormat)
	}
	return nil
}

// resolveBaseColour reads the base colour from args or an image, not both.
func resolveBaseColour(ctx context.Context, args []string, imagePath string) (colour.RGB, error) {
	switch {
	case len(args) == 1 && imagePath != "":
		return colour.RGB{}, fmt.Errorf("give either a colour or --from-image, not both")
	case imagePath != "":
		return colourFromImage(ctx, imagePath)
	case len(args) == 1:
		return colour.ParseHex(args[0])
	default:
		return colour.RGB{}, fmt.Errorf("a base colour or --from-image is required")
	}
}

func colourFromImage(ctx context.Context, path string) (colour.RGB, error) {
	if image.IsRemote(path) {
		cached, err := image.NewRemote(appFs, appConfig.Image.CacheDir, appLogger.Named("image")).Fetch(ctx, path)
		if err != nil {
			return colour.RGB{}, err
		}
		path = cached
	}

	img, format, err := image.NewLoader(appFs).Load(path)
	if err != nil {
		return colour.RGB{}, fmt.Errorf("failed to load image: %w", err)
	}
	c, err := colour.DominantColour(img)
	if err != nil {
		return colour.RGB{}, fmt.Errorf("failed to extract colour: %w", err)
	}
	appLogger.Info("picked colour from image", "path", path, "format", format, "colour", c.Hex())
	return c, nil
}

// resolveCurve parses name, falling back to the configured default.
func resolveCurve(name string) (colour.Curve, error) {
	if name == "" {
		name = string(appConfig.Curve())
	}
	return colour.ParseCurve(name)
}

func newCurvesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "curves",
		Short: "List lightness curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := NewTable("CURVE", "STEP 1", "STEP 6", "STEP 12")
			for _, curve := range colour.Curves() {
				row := []string{string(curve)}
				for _, step := range []int{1, 6, colour.StepCount} {
					l, err := colour.CurveLightness(step, colour.StepCount, curve)
					if err != nil {
						return err
					}
					row = append(row, strconv.FormatFloat(l*100, 'f', 1, 64)+"%")
				}
				table.AddRow(row...)
			}
			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}
