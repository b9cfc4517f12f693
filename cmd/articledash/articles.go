package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"articledash/internal/api"
	"articledash/internal/controller"
	"articledash/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listSearch   string
	listPage     int
	listPageSize int

	articleTitle   string
	articleContent string

	deleteYes bool
)

var articlesCmd = &cobra.Command{
	Use:     "articles",
	Aliases: []string{"a"},
	Short:   "Talk to the Article API directly",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !model.ValidPageSize(listPageSize) {
			return fmt.Errorf("page size must be one of %v", model.PageSizes)
		}
		res, err := newClient().List(cmd.Context(), api.ListQuery{
			Search:   listSearch,
			Page:     max(listPage, 1),
			PageSize: listPageSize,
		})
		if err != nil {
			return describe(err)
		}
		printList(cmd.OutOrStdout(), res, max(listPage, 1), listPageSize)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := newClient().Get(cmd.Context(), id)
		if err != nil {
			return describe(err)
		}
		printArticle(cmd.OutOrStdout(), res.Article)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an article",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkInput(); err != nil {
			return err
		}
		res, err := newClient().Create(cmd.Context(), model.ArticleInput{Title: articleTitle, Content: articleContent})
		if err != nil {
			return describe(err)
		}
		logger.Info("Article created", idField(res))
		fmt.Fprintln(cmd.OutOrStdout(), "Article created successfully!")
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace an article's title and content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := checkInput(); err != nil {
			return err
		}
		if _, err := newClient().Update(cmd.Context(), id, model.ArticleInput{Title: articleTitle, Content: articleContent}); err != nil {
			return describe(err)
		}
		logger.Info("Article updated", zap.Int("id", id))
		fmt.Fprintln(cmd.OutOrStdout(), "Article updated successfully!")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an article (needs --yes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !deleteYes {
			return errors.New("refusing to delete without --yes; this cannot be undone")
		}
		if _, err := newClient().Delete(cmd.Context(), id); err != nil {
			return describe(err)
		}
		logger.Info("Article deleted", zap.Int("id", id))
		fmt.Fprintln(cmd.OutOrStdout(), "Article deleted successfully!")
		return nil
	},
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid article id %q", s)
	}
	return id, nil
}

// checkInput runs the same validation as the dashboard form.
func checkInput() error {
	if errs := controller.ValidateForm(articleTitle, articleContent); len(errs) > 0 {
		return fieldError("invalid article", errs)
	}
	return nil
}

// describe turns API failures into something worth printing.
func describe(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", apiErr.Status)
		}
		if len(apiErr.Fields) > 0 {
			return fieldError(msg, apiErr.Fields)
		}
		return errors.New(msg)
	}
	logger.Debug("Article API call failed", zap.Error(err))
	return err
}

func fieldError(msg string, fields model.FieldErrors) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msg += fmt.Sprintf("\n  %s: %s", k, fields[k])
	}
	return errors.New(msg)
}

func idField(res *api.Result) zap.Field {
	if res != nil && res.Article != nil {
		return zap.Int("id", res.Article.ID)
	}
	return zap.Skip()
}

func printList(w io.Writer, res *api.Result, page, pageSize int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NO\tID\tTITLE\tCONTENT\tCREATED")
	for _, r := range model.NewArticleRows(res.Articles, page, pageSize) {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", r.No, r.ID, r.Title, r.Excerpt, r.Date)
	}
	tw.Flush()
	if len(res.Articles) == 0 {
		fmt.Fprintln(w, "No articles found")
	}
	fmt.Fprintf(w, "\npage %d of %d\n", page, max(res.PageInfo.LastPage, 1))
}

func printArticle(w io.Writer, a *model.Article) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "ID:         %d\n", a.ID)
	fmt.Fprintf(w, "Title:      %s\n", a.Title)
	fmt.Fprintf(w, "Created At: %s\n\n", model.FormatDate(a.CreatedAt))
	fmt.Fprintln(w, a.Content)
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Search text")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", model.DefaultPageSize, "Rows per page (5, 10 or 25)")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&articleTitle, "title", "t", "", "Article title")
		c.Flags().StringVarP(&articleContent, "content", "c", "", "Article content")
	}

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Confirm the deletion")

	articlesCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
}
