package posts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/crucial707/blog-platform/cmd/cli/output"
	"github.com/crucial707/blog-platform/cmd/cli/root"
	"github.com/crucial707/blog-platform/cmd/cli/session"
	"github.com/crucial707/blog-platform/internal/client"
	"github.com/crucial707/blog-platform/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// Init Posts
// ==========================
func init() {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage posts",
	}

	postsCmd.AddCommand(
		listPostsCmd(),
		getPostCmd(),
		createPostCmd(),
		editPostCmd(),
		deletePostCmd(),
		watchPostsCmd(),
	)

	root.GetRoot().AddCommand(postsCmd)
}

func renderPostList(list *client.PostList) {
	rows := make([][]interface{}, 0, len(list.Posts))
	for _, p := range list.Posts {
		rows = append(rows, []interface{}{
			p.ID,
			p.Title,
			truncate(p.Content, 40),
			p.Author.Username,
			p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	output.RenderTable([]string{"ID", "Title", "Content", "Author", "Created"}, rows)
	fmt.Printf("Page %d of %d (%d posts)\n", list.Page, list.TotalPages(), list.Total)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func printPost(p *models.Post) {
	fmt.Printf("ID:      %d\n", p.ID)
	fmt.Printf("Title:   %s\n", p.Title)
	fmt.Printf("Author:  %s (%s)\n", p.Author.Fullname, p.Author.Email)
	fmt.Printf("Created: %s\n", p.CreatedAt.Format(time.RFC1123))
	fmt.Println()
	fmt.Println(p.Content)
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session.Restore()
			if err != nil {
				return err
			}

			list, err := c.ListPosts(cmd.Context(), page, limit)
			if err != nil {
				return err
			}

			renderPostList(list)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 6, "posts per page")

	return cmd
}

// ==========================
// GET
// ==========================
func getPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a single post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}

			c, err := session.Restore()
			if err != nil {
				return err
			}

			post, err := c.GetPost(cmd.Context(), id)
			if err != nil {
				return err
			}

			printPost(post)
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createPostCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session.Restore()
			if err != nil {
				return err
			}

			post, err := c.CreatePost(cmd.Context(), title, content)
			if err != nil {
				return describeValidation(err)
			}

			fmt.Printf("Created post %d\n", post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title (5-255 characters)")
	cmd.Flags().StringVar(&content, "content", "", "post content (10-500 characters)")

	return cmd
}

// ==========================
// EDIT
// ==========================
func editPostCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a post's title and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}

			c, err := session.Restore()
			if err != nil {
				return err
			}

			post, err := c.UpdatePost(cmd.Context(), id, title, content)
			if err != nil {
				return describeValidation(err)
			}

			fmt.Printf("Updated post %d\n", post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title (5-255 characters)")
	cmd.Flags().StringVar(&content, "content", "", "new content (10-500 characters)")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}

			c, err := session.Restore()
			if err != nil {
				return err
			}

			if err := c.DeletePost(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Println("Post deleted")
			return nil
		},
	}
}

// ==========================
// WATCH (refreshing list view)
// ==========================
func watchPostsCmd() *cobra.Command {
	var page, limit, intervalSec int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously refresh the post listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session.Restore()
			if err != nil {
				return err
			}

			loader := client.NewLoader()
			defer loader.Stop()
			key := fmt.Sprintf("page=%d&limit=%d", page, limit)

			ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
			defer ticker.Stop()

			for {
				// Kick off a fetch; if the previous tick's fetch for this
				// page is still in flight, the loader skips this one.
				loader.Load(cmd.Context(), key, func(ctx context.Context) (any, error) {
					return c.ListPosts(ctx, page, limit)
				})

				state, data, err := loader.Snapshot()
				switch state {
				case client.Success:
					fmt.Print("\033[H\033[2J")
					renderPostList(data.(*client.PostList))
				case client.Error:
					if client.IsAuthError(err) {
						return fmt.Errorf("session expired, please login again")
					}
					fmt.Println("fetch failed:", err)
				}

				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 6, "posts per page")
	cmd.Flags().IntVar(&intervalSec, "interval", 5, "refresh interval in seconds")

	return cmd
}

// describeValidation expands field-level validation details when present.
func describeValidation(err error) error {
	apiErr, ok := err.(*client.APIError)
	if !ok || len(apiErr.Fields) == 0 {
		return err
	}
	msg := apiErr.Message
	for field, reason := range apiErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, reason)
	}
	return fmt.Errorf("%s", msg)
}
