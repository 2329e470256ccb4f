package cmd

import (
	"fmt"

	"github.com/chrisdamba/trafficsim/internal/cloudwriter"
	"github.com/chrisdamba/trafficsim/internal/output"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Archive the stored history of every location as Parquet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close()

		var factory cloudwriter.CloudWriterFactory
		bucket := cfg.CloudStorage.BucketName
		if bucket != "" {
			f, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
			if err != nil {
				return err
			}
			factory = f
		}

		archive := output.NewParquetArchive(cfg.OutputPath, cfg.OutputFolder, factory, bucket, log)
		sim := newSimulator(cfg, st.traffic)
		bar := progressbar.Default(-1, "exporting")

		n, exportErr := output.Export(ctx, sim, sim.Locations(), archive, bar)
		files, closeErr := archive.Close()
		_ = bar.Finish()
		if exportErr != nil {
			return exportErr
		}
		if closeErr != nil {
			return closeErr
		}

		log.Info("export completed", zap.Int("samples", n), zap.Strings("files", files))
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d samples into %d files\n", n, len(files))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "output", "Local directory for the archive")
	exportCmd.Flags().String("folder", "traffic", "Folder inside the output directory or bucket")
	exportCmd.Flags().String("s3-bucket", "", "Upload to this S3 bucket instead of the local directory")
	exportCmd.Flags().String("region", "", "AWS region for the S3 bucket")

	bindFlags(exportCmd.Flags(), map[string]string{
		"output_path":               "out",
		"output_folder":             "folder",
		"cloud_storage.bucket_name": "s3-bucket",
		"cloud_storage.region":      "region",
	})
	rootCmd.AddCommand(exportCmd)
}
