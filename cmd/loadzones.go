package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/importer"
)

var (
	loadZonesShpPath string
	loadZonesFields  importer.ZoneFields
)

var loadZonesCmd = &cobra.Command{
	Use:   "loadzones",
	Short: "Load province boundaries from a shapefile",
	Long:  "Parses province polygons into centroid and bounding-box zone rows used by the dashboard province filter.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		n, err := importer.LoadZones(ctx, st, loadZonesShpPath, loadZonesFields)
		if err != nil {
			return eris.Wrap(err, "load zones")
		}

		zap.L().Info("zones loaded",
			zap.Int64("rows", n),
			zap.String("shapefile", loadZonesShpPath),
		)
		return nil
	},
}

func init() {
	loadZonesCmd.Flags().StringVar(&loadZonesShpPath, "shp", "", "path to boundary shapefile (required)")
	loadZonesCmd.Flags().StringVar(&loadZonesFields.Code, "code-field", importer.DefaultZoneFields.Code, "attribute holding the zone code")
	loadZonesCmd.Flags().StringVar(&loadZonesFields.NameEN, "name-en-field", importer.DefaultZoneFields.NameEN, "attribute holding the English name")
	loadZonesCmd.Flags().StringVar(&loadZonesFields.NameTH, "name-th-field", importer.DefaultZoneFields.NameTH, "attribute holding the Thai name")
	_ = loadZonesCmd.MarkFlagRequired("shp")
	rootCmd.AddCommand(loadZonesCmd)
}
