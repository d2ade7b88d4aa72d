package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Inspect and change the document collection",
	Long: `List documents and issue optimistic changes. Changes apply to the
local collection immediately and are confirmed or rolled back when the
backend answers.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the local document collection",
	RunE:  runDocumentsList,
}

var documentsAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Register a local file as a new document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsAdd,
}

var documentsUpdateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Change document fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsUpdate,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

// Flags for documents update.
var (
	updateName     string
	updateCategory string
	updateTags     []string
)

func init() {
	documentsUpdateCmd.Flags().StringVar(&updateName, "name", "", "New filename")
	documentsUpdateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
	documentsUpdateCmd.Flags().StringSliceVar(&updateTags, "tags", nil, "Replacement tag list")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsAddCmd)
	documentsCmd.AddCommand(documentsUpdateCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if docCache == nil {
		return errors.New("document cache not configured")
	}

	docs := docCache.ListDocuments()
	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	for i := range docs {
		doc := &docs[i]
		marker := " "
		if docCache.HasPendingOperations(doc.ID) {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, doc.ID)
		cmd.Printf("    Name:   %s\n", doc.FileName)
		cmd.Printf("    Status: %s\n", doc.Status)
		if doc.Category != "" {
			cmd.Printf("    Category: %s\n", doc.Category)
		}
		if len(doc.Tags) > 0 {
			cmd.Printf("    Tags:   %s\n", strings.Join(doc.Tags, ", "))
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents (* = pending changes)\n", len(docs))
	return nil
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	if documentMutator == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	opID, err := documentMutator.CreateOptimistically(domain.Document{
		FileName:     name,
		OriginalName: name,
		DocType:      strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		Size:         info.Size(),
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	cmd.Printf("Registered %s (operation %s)\n", name, opID)
	return nil
}

func runDocumentsUpdate(cmd *cobra.Command, args []string) error {
	if documentMutator == nil {
		return errors.New("document service not configured")
	}

	patch := domain.Patch{}
	if updateName != "" {
		patch["filename"] = updateName
	}
	if updateCategory != "" {
		patch["category"] = updateCategory
	}
	if cmd.Flags().Changed("tags") {
		patch["tags"] = updateTags
	}
	if len(patch) == 0 {
		return errors.New("nothing to update: pass --name, --category or --tags")
	}

	opID, err := documentMutator.UpdateOptimistically(args[0], patch)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	cmd.Printf("Updated %s (operation %s)\n", args[0], opID)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if documentMutator == nil {
		return errors.New("document service not configured")
	}

	opID, err := documentMutator.DeleteOptimistically(args[0])
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	cmd.Printf("Deleted %s (operation %s)\n", args[0], opID)
	return nil
}
