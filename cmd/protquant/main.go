package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"protquant/adapters/excel"
	"protquant/adapters/tsv"
	"protquant/app"
	"protquant/domain/quant"
	"protquant/internal/config"
	"protquant/internal/testkit"
	"protquant/pipeline"
	"protquant/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "protquant",
		Short: "Protein abundance decision pipeline for label-free proteomics",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var input, annotations, outDir string
	var fdr, fold float64
	var conditionA, conditionB string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the decision pipeline on a peptide quantification export",
		Long: `Aggregate peptides to proteins, normalize sample columns, test each
protein for differential abundance, correct for multiple testing, and
filter on the confidence-interval-derived effect size.

Accepts tab-separated or xlsx input; sample columns are matched as
<condition>_<replicate> (e.g. control_1..control_3, treated_1..treated_3).

Example: protquant run --input peptides.tsv --annotations proteins.tsv --out results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Paths.PeptideFile
			}
			if input == "" {
				return fmt.Errorf("no input file given (--input or PROTQUANT_PEPTIDE_FILE)")
			}
			if annotations == "" {
				annotations = cfg.Paths.AnnotationFile
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Paths.OutDir
			}
			if !cmd.Flags().Changed("fdr") {
				fdr = cfg.Pipeline.FDRThreshold
			}
			if !cmd.Flags().Changed("fold") {
				fold = cfg.Pipeline.RelevanceFoldThreshold
			}
			if !cmd.Flags().Changed("condition-a") {
				conditionA = cfg.Pipeline.ConditionA
			}
			if !cmd.Flags().Changed("condition-b") {
				conditionB = cfg.Pipeline.ConditionB
			}

			layout := quant.DefaultLayout(conditionA, conditionB)
			pipeCfg := pipeline.Config{
				Layout:                 layout,
				FDRThreshold:           fdr,
				RelevanceFoldThreshold: fold,
			}
			pipe, err := pipeline.New(pipeCfg)
			if err != nil {
				return err
			}

			var source ports.PeptideSource
			if strings.EqualFold(filepath.Ext(input), ".xlsx") {
				source = excel.NewPeptideReader(input, layout)
			} else {
				source = tsv.NewPeptideReader(input, layout)
			}

			var annotationSource ports.AnnotationSource
			if annotations != "" {
				annotationSource = tsv.NewAnnotationReader(annotations)
			}

			service := app.NewDecisionService(source, annotationSource, tsv.NewDecisionWriter(outDir), pipe)
			manifest, err := service.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("run %s: %d proteins tested, %d dropped incomplete, %d significant, %d relevant\n",
				manifest.RunID, manifest.Proteins, manifest.DroppedIncomplete, manifest.Significant, manifest.Relevant)
			fmt.Printf("results written to %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Peptide quantification file (.tsv/.txt or .xlsx)")
	cmd.Flags().StringVar(&annotations, "annotations", "", "Protein annotation mapping file (tsv)")
	cmd.Flags().StringVar(&outDir, "out", "out", "Output directory")
	cmd.Flags().Float64Var(&fdr, "fdr", pipeline.DefaultFDRThreshold, "FDR significance threshold")
	cmd.Flags().Float64Var(&fold, "fold", pipeline.DefaultRelevanceFoldThreshold, "Relevance fold-change threshold")
	cmd.Flags().StringVar(&conditionA, "condition-a", "control", "Column prefix of condition A (reference)")
	cmd.Flags().StringVar(&conditionB, "condition-b", "treated", "Column prefix of condition B")

	return cmd
}

func newSimulateCmd() *cobra.Command {
	var seed int64
	var proteins, peptides, changed int
	var foldChange float64
	var out string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a seeded synthetic peptide dataset",
		Long: `Generate a deterministic synthetic peptide quantification table with a
known set of truly changed proteins, for demos and pipeline validation.

Example: protquant simulate --seed 42 --proteins 200 --out peptides.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Seed
			}

			layout := quant.DefaultLayout(cfg.Pipeline.ConditionA, cfg.Pipeline.ConditionB)
			spec := testkit.DefaultSpec()
			spec.Proteins = proteins
			spec.PeptidesPerProtein = peptides
			spec.Increased = changed
			spec.Decreased = changed
			spec.FoldChange = foldChange

			gen := testkit.NewGenerator(seed, layout)
			records := gen.GeneratePeptides(spec)
			if err := tsv.WritePeptides(out, layout, records); err != nil {
				return err
			}

			fmt.Printf("wrote %d peptide rows (%d proteins, %d true increases, %d true decreases) to %s\n",
				len(records), spec.Proteins, spec.Increased, spec.Decreased, out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().IntVar(&proteins, "proteins", 200, "Number of proteins")
	cmd.Flags().IntVar(&peptides, "peptides", 4, "Peptides per protein")
	cmd.Flags().IntVar(&changed, "changed", 10, "Truly increased (and decreased) protein count")
	cmd.Flags().Float64Var(&foldChange, "fold-change", 2.0, "True fold change of changed proteins")
	cmd.Flags().StringVar(&out, "out", "peptides.tsv", "Output peptide table path")

	return cmd
}
