// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jcodagnone/corredores/lineio"
	"github.com/jcodagnone/corredores/plot"
	"github.com/jcodagnone/corredores/store"
	"github.com/jcodagnone/corredores/traclus"
	"github.com/jcodagnone/corredores/utils"
	"github.com/spf13/cobra"
)

type clusterOptions struct {
	Input      string
	Params     traclus.Params
	ParamsFile string
	OutDir     string
	DbPath     string
	Geographic bool
	H3Res      int
	PlotPath   string
}

var clusterOpts = &clusterOptions{}

// resolveParams starts from the params file, if any, and lets every flag the
// user set explicitly override it.
func resolveParams(cmd *cobra.Command, opts *clusterOptions) (traclus.Params, error) {
	var p traclus.Params

	if opts.ParamsFile != "" {
		loaded, err := traclus.LoadParams(opts.ParamsFile)
		if err != nil {
			return p, err
		}

		p = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("max-dist") || opts.ParamsFile == "" {
		p.MaxDist = opts.Params.MaxDist
	}

	if flags.Changed("min-density") || opts.ParamsFile == "" {
		p.MinWeight = opts.Params.MinWeight
	}

	if flags.Changed("max-angle") || opts.ParamsFile == "" {
		p.MaxAngle = opts.Params.MaxAngle
	}

	if flags.Changed("segment-size") || opts.ParamsFile == "" {
		p.SegmentSize = opts.Params.SegmentSize
	}

	if flags.Changed("workers") || p.Workers == 0 {
		p.Workers = opts.Params.Workers
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid parameters: %w", err)
	}

	return p, nil
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Agrupa las líneas de deseo de un archivo en corredores",
	Long: `Lee líneas de deseo, una por línea con el formato

    nombre peso x_inicio y_inicio x_fin y_fin

las divide en tramos de --segment-size, agrupa los tramos en corredores y
escribe dos listados separados por tabuladores junto al archivo de entrada:

    <entrada>.<d>.<n>.<a>.<s>.segmentlist.txt
    <entrada>.<d>.<n>.<a>.<s>.corridorlist.txt

$ corredores cluster -i lineas.txt -d 5 -n 3 -a 5 -s 20
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		params, err := resolveParams(cmd, clusterOpts)
		if err != nil {
			return err
		}

		log.Printf("Reading trajectories from %s...", clusterOpts.Input)

		set, err := lineio.ReadFile(clusterOpts.Input, params.SegmentSize)
		if err != nil {
			return err
		}

		log.Printf("Read %s trajectories, %s segments",
			utils.FormatInt(int64(set.Len())), utils.FormatInt(int64(set.NumSegments())))

		res, err := traclus.Run(set, params)
		if err != nil {
			return err
		}

		segPath, corrPath := lineio.OutputNames(clusterOpts.Input, params)
		if clusterOpts.OutDir != "" {
			if err := os.MkdirAll(clusterOpts.OutDir, 0o750); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			segPath = filepath.Join(clusterOpts.OutDir, filepath.Base(segPath))
			corrPath = filepath.Join(clusterOpts.OutDir, filepath.Base(corrPath))
		}

		err = errors.Join(
			writeFile(segPath, func(w io.Writer) error { return lineio.WriteSegments(w, set) }),
			writeFile(corrPath, func(w io.Writer) error { return lineio.WriteCorridors(w, res.Corridors) }),
		)
		if err != nil {
			return err
		}

		if clusterOpts.PlotPath != "" {
			opts := plot.Options{Title: filepath.Base(clusterOpts.Input)}
			if err := plot.Render(clusterOpts.PlotPath, set, res.Corridors, opts); err != nil {
				return err
			}
		}

		runID := ""

		if clusterOpts.DbPath != "" {
			db, repo, err := openRunRepository(clusterOpts.DbPath, false)
			if err != nil {
				return err
			}
			defer db.Close()

			run := store.NewRun(clusterOpts.Input, res)
			run.Geographic = clusterOpts.Geographic
			run.H3Resolution = clusterOpts.H3Res

			if err := repo.SaveRun(run, set, res.Corridors); err != nil {
				return fmt.Errorf("saving run: %w", err)
			}

			runID = run.ID
		}

		var weight float64
		for _, c := range res.Corridors {
			weight += c.Weight
		}

		fmt.Printf("Corredores:       %s\n", utils.FormatInt(int64(len(res.Corridors))))
		fmt.Printf("Peso agrupado:    %s\n", utils.FormatFloat(weight, 2))
		fmt.Printf("Clusters densos:  %s\n", utils.FormatInt(int64(res.Clusters)))
		fmt.Printf("Caché:            %s aciertos, %s fallos, %s distancias\n",
			utils.FormatInt(int64(res.Cache.Hits)), utils.FormatInt(int64(res.Cache.Misses)),
			utils.FormatInt(int64(res.Cache.Entries)))
		fmt.Printf("Tramos:           %s\n", segPath)
		fmt.Printf("Corredores:       %s\n", corrPath)

		if runID != "" {
			fmt.Printf("Corrida:          %s\n", runID)
		}

		return nil
	},
}

func addClusterFlags(cmd *cobra.Command, opts *clusterOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.Input, "infile", "i", "", "Archivo con las trayectorias")
	flags.Float64VarP(&opts.Params.MaxDist, "max-dist", "d", 0, "Distancia máxima entre tramos de un corredor")
	flags.Float64VarP(&opts.Params.MinWeight, "min-density", "n", 0, "Peso mínimo de un corredor")
	flags.Float64VarP(&opts.Params.MaxAngle, "max-angle", "a", 0, "Diferencia máxima de rumbo, en grados")
	flags.Float64VarP(&opts.Params.SegmentSize, "segment-size", "s", 0, "Largo de los tramos")
	flags.StringVar(&opts.ParamsFile, "params", "", "Archivo JSON con los parámetros; los flags explícitos tienen prioridad")
	flags.IntVar(&opts.Params.Workers, "workers", 1, "Cantidad de goroutines para el barrido DBSCAN")
	flags.StringVar(&opts.OutDir, "out-dir", "", "Directorio de salida (por defecto, junto a la entrada)")
	flags.StringVar(&opts.DbPath, "db-path", "", "Directorio de la base DuckDB donde guardar la corrida")
	flags.BoolVar(&opts.Geographic, "geographic", false, "Las coordenadas son longitud/latitud")
	flags.IntVar(&opts.H3Res, "h3-res", store.DefaultH3Resolution, "Resolución H3 de las celdas de los corredores")
	flags.StringVar(&opts.PlotPath, "plot", "", "Dibuja tramos y corredores en este archivo (.png, .svg, .pdf)")
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	addClusterFlags(clusterCmd, clusterOpts)

	_ = clusterCmd.MarkFlagRequired("infile")
}
