package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/review-pilot/internal/confluence"
	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/gitutil"
)

var (
	ingestDir     string
	ingestRepoURL string
	ingestBranch  string
	ingestFromKB  bool
	skipExisting  bool
	forceUpdate   bool
	ingestWorkers int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documentation into the semantic index",
	Long: `Ingest markdown and text documents into the semantic index.

Documents are deduplicated by content hash: unchanged files are skipped and
changed files are only replaced with --force-update.

Examples:
  pilot-cli ingest --dir ./docs
  pilot-cli ingest --repo https://github.com/acme/handbook --skip-existing
  pilot-cli ingest --from-kb --force-update`,
	RunE: runIngest,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "Local directory of documents to ingest")
	ingestCmd.Flags().StringVar(&ingestRepoURL, "repo", "", "Git repository of documents to clone and ingest")
	ingestCmd.Flags().StringVar(&ingestBranch, "branch", "", "Branch to clone (default branch when empty)")
	ingestCmd.Flags().BoolVar(&ingestFromKB, "from-kb", false, "Dump all pages from the configured knowledge base")
	ingestCmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "Skip documents whose content is already indexed")
	ingestCmd.Flags().BoolVar(&forceUpdate, "force-update", false, "Re-embed documents whose content changed")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 4, "Number of concurrent embedding workers")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	sources := 0
	for _, set := range []bool{ingestDir != "", ingestRepoURL != "", ingestFromKB} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --dir, --repo or --from-kb must be set")
	}

	appInstance, log, err := initApp(cmd)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	var docs []core.IndexedDocument
	if ingestFromKB {
		docs, err = collectKnowledgeBase(cmd, appInstance.Tools.Docs)
	} else {
		root := ingestDir
		if ingestRepoURL != "" {
			cloner := gitutil.NewClient(log)
			path, cleanup, cloneErr := cloner.CloneTemp(cmd.Context(), ingestRepoURL, ingestBranch, viper.GetString("GITHUB_TOKEN"))
			if cloneErr != nil {
				return fmt.Errorf("failed to clone documentation repository: %w", cloneErr)
			}
			defer cleanup()
			root = path
		}
		docs, err = collectDocuments(root)
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents found, nothing to ingest.")
		return nil
	}

	fmt.Printf("Ingesting %d document(s) with %d worker(s)...\n", len(docs), ingestWorkers)
	start := time.Now()

	policy := core.IngestPolicy{SkipExisting: skipExisting, ForceUpdate: forceUpdate}
	report := ingestParallel(cmd, appInstance.Index, docs, policy)

	fmt.Println()
	successColor.Printf("Ingested: %d\n", report.Ingested)
	dimColor.Printf("Skipped:  %d\n", report.Skipped)
	if report.Failed > 0 {
		errorColor.Printf("Failed:   %d\n", report.Failed)
		for _, e := range report.Errors {
			errorColor.Printf("   - %v\n", e)
		}
	}
	dimColor.Printf("Took %s\n", time.Since(start).Round(time.Millisecond))

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed to ingest", report.Failed, report.Total())
	}
	return nil
}

func ingestParallel(cmd *cobra.Command, idx core.SemanticIndex, docs []core.IndexedDocument, policy core.IngestPolicy) core.IngestReport {
	var (
		mu     sync.Mutex
		report core.IngestReport
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(ingestWorkers)

	for _, doc := range docs {
		g.Go(func() error {
			outcome, err := idx.Ingest(ctx, doc, policy)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case core.IngestIngested:
				report.Ingested++
			case core.IngestSkipped:
				report.Skipped++
			default:
				report.Failed++
				report.Errors = append(report.Errors, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// collectKnowledgeBase dumps every page from the configured knowledge base.
// Only the live Confluence adapter supports a full space walk.
func collectKnowledgeBase(cmd *cobra.Command, kb core.KnowledgeBase) ([]core.IndexedDocument, error) {
	client, ok := kb.(*confluence.Client)
	if !ok {
		return nil, fmt.Errorf("--from-kb requires a configured knowledge base")
	}

	pages, err := client.AllPages(cmd.Context(), 50)
	if err != nil {
		return nil, fmt.Errorf("failed to dump knowledge base: %w", err)
	}

	docs := make([]core.IndexedDocument, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, core.IndexedDocument{
			ID:        page.ID,
			Title:     page.Title,
			Content:   page.Body,
			UpdatedAt: page.UpdatedAt,
		})
	}
	return docs, nil
}

// collectDocuments walks root and turns every markdown or text file into an
// indexable document. The id is the path relative to root so re-ingesting the
// same tree updates in place.
func collectDocuments(root string) ([]core.IndexedDocument, error) {
	var docs []core.IndexedDocument

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		content := string(raw)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		docs = append(docs, core.IndexedDocument{
			ID:      filepath.ToSlash(rel),
			Title:   documentTitle(content, rel),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return docs, nil
}

// documentTitle uses the first markdown heading, falling back to the filename.
func documentTitle(content, rel string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
