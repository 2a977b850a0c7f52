// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/corredores/lineio"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var generateOptions = struct {
	Output string
	lineio.GenerateOptions
}{}

var debugGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Genera líneas de deseo sintéticas agrupadas por rumbo",
	Long: `Genera -n grupos de líneas de largo -l. Cada grupo tiene un rumbo propio,
separado 2*a+1 grados del anterior, y -r líneas de referencia; cada una va
acompañada de -p-1 líneas que parten a menos de -d de ella con un rumbo que
difiere en menos de -a grados.

$ corredores debug generate -o lineas.txt -l 100 -n 3 -r 5 -p 4 -a 5 -d 5
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		var n int

		generate := func(w io.Writer) (err error) {
			n, err = lineio.Generate(w, generateOptions.GenerateOptions)

			return err
		}

		if generateOptions.Output == "" || generateOptions.Output == "-" {
			if err := generate(os.Stdout); err != nil {
				return err
			}
		} else if err := writeFile(generateOptions.Output, generate); err != nil {
			return err
		}

		log.Printf("Generated %d lines", n)

		return nil
	},
}

var segmentSize float64

var debugSegmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Muestra la división en tramos de cada trayectoria",
	Long: `Lee una trayectoria por línea, e imprime en stdout su nombre seguido de los
tramos en los que se divide.

$ echo "a 1 0 0 25 0" | corredores debug segments -s 10
a		[{"id":"a:0:0",…},…]
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Ingrese trayectorias a dividir, una por línea…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			name := strings.Fields(line)[0]

			set, err := lineio.Read(strings.NewReader(line), segmentSize)
			if err != nil {
				fmt.Printf("%s\t%q\n", name, err)

				continue
			}

			if s, err := json.Marshal(set.At(0).Segments); err == nil {
				fmt.Printf("%s\t\t%s\n", name, s)
			} else {
				log.Fatal(err)
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugGenerateCmd)
	debugCmd.AddCommand(debugSegmentsCmd)

	flags := debugGenerateCmd.Flags()
	flags.StringVarP(&generateOptions.Output, "output", "o", "", "Archivo de salida (por defecto, stdout)")
	flags.Float64VarP(&generateOptions.LineLength, "line-length", "l", 100, "Largo de cada línea")
	flags.IntVarP(&generateOptions.Clusters, "clusters", "n", 3, "Cantidad de grupos")
	flags.IntVarP(&generateOptions.Rounds, "rounds", "r", 5, "Líneas de referencia por grupo")
	flags.IntVarP(&generateOptions.LinesPerRound, "lines-per-round", "p", 4, "Líneas por cada línea de referencia")
	flags.Float64VarP(&generateOptions.MaxAngle, "max-angle", "a", 5, "Diferencia máxima de rumbo dentro de un grupo")
	flags.Float64VarP(&generateOptions.MaxDistance, "max-distance", "d", 5, "Distancia máxima entre líneas de un grupo")
	flags.Uint64Var(&generateOptions.Seed, "seed", 1, "Semilla del generador")

	debugSegmentsCmd.Flags().Float64VarP(&segmentSize, "segment-size", "s", 10, "Largo de los tramos")
}
