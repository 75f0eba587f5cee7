package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/router"
	"jo3qma.com/bookswap_client/internal/usecase"
)

// listingFlags は一覧のフィルタ指定です
type listingFlags struct {
	category  string
	condition string
	search    string
	minPrice  float64
	maxPrice  float64
	sortBy    string
	sortDir   string
	page      int
}

func (f *listingFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.condition, "condition", "", "NEW, EXCELLENT, VERY_GOOD, GOOD or FAIR")
	cmd.Flags().StringVar(&f.search, "search", "", "search term")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "minimum price")
	cmd.Flags().Float64Var(&f.maxPrice, "max-price", 0, "maximum price")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "sort field (createdAt, price, name)")
	cmd.Flags().StringVar(&f.sortDir, "dir", "", "sort direction (asc, desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
}

func (f *listingFlags) apply(cmd *cobra.Command, q *model.Query) error {
	q.Category = f.category
	if f.condition != "" {
		c, ok := model.ParseCondition(f.condition)
		if !ok {
			return fmt.Errorf("unknown condition %q", f.condition)
		}
		q.Condition = c
	}
	q.SearchTerm = f.search
	if cmd.Flags().Changed("min-price") {
		v := f.minPrice
		q.MinPrice = &v
	}
	if cmd.Flags().Changed("max-price") {
		v := f.maxPrice
		q.MaxPrice = &v
	}
	if f.sortBy != "" {
		q.SortBy = f.sortBy
	}
	if f.sortDir != "" {
		q.SortDir = model.ParseSortDir(f.sortDir)
	}
	return nil
}

// newEngine はフィルタと指定ページを適用した一覧エンジンを作り、読み込みます
func newEngine(cmd *cobra.Command, a *app, f *listingFlags) (*usecase.ListingEngine, error) {
	q := a.listingQuery()
	if err := f.apply(cmd, &q); err != nil {
		return nil, err
	}
	if f.page > 1 {
		q.Page = f.page - 1
	}
	e := usecase.NewListingEngine(a.client, a.client, a.client, a.sessions, q, a.log.Named("listing"))
	if err := e.Mount(cmd.Context()); err != nil {
		return e, err
	}
	return e, nil
}

func newItemsCmd(withApp wrapper) *cobra.Command {
	var f listingFlags
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Browse listings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewItems); err != nil {
				return err
			}
			e, err := newEngine(cmd, a, &f)
			if e == nil {
				return err
			}
			a.render.Listing(e.Snapshot(), a.sessions.Current())
			return reported(err)
		}),
	}
	f.bind(cmd)
	return cmd
}

func newItemCmd(withApp wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "item <id>",
		Short: "Show a listing with the seller's contact",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewItems); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			it, err := usecase.NewItemUsecase(a.client, a.sessions).GetItem(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			a.render.Item(*it, a.sessions.Current())
			return nil
		}),
	}
}

func newMyItemsCmd(withApp wrapper) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "my-items",
		Short: "List your own listings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewItems); err != nil {
				return err
			}
			p, err := usecase.NewItemUsecase(a.client, a.sessions).MyItems(cmd.Context(), page-1, a.cfg.Listing.PageSize)
			if err != nil {
				return fail(err)
			}
			a.render.Listing(usecase.ListingState{
				Status:        usecase.StatusLoaded,
				Items:         p.Content,
				Page:          p.Number,
				TotalPages:    p.TotalPages,
				TotalElements: p.TotalElements,
			}, a.sessions.Current())
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	return cmd
}

func newSellCmd(withApp wrapper) *cobra.Command {
	var (
		fields usecase.FormFields
		file   string
		cond   string
	)
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Create a listing from an image URL or a local image",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAddItem); err != nil {
				return err
			}
			form := usecase.NewListingForm(a.client, a.client, a.client, a.previews, a.sessions, a.log.Named("form"))
			defer form.Close()

			if err := form.Mount(cmd.Context()); err != nil {
				return fail(err)
			}
			// カテゴリ未指定の場合は先頭のカテゴリを使います
			if fields.CategoryID == "" {
				fields.CategoryID = form.State().Fields.CategoryID
			}
			if cond != "" {
				c, ok := model.ParseCondition(cond)
				if !ok {
					return fmt.Errorf("unknown condition %q", cond)
				}
				fields.Condition = c
			}
			form.SetFields(fields)

			if file != "" {
				if err := form.SelectFile(&model.LocalFile{Path: file, Name: filepath.Base(file)}); err != nil {
					a.render.Form(form.State())
					return reported(err)
				}
				a.render.Form(form.State())
			}

			item, err := form.Submit(cmd.Context())
			a.render.Form(form.State())
			if err != nil {
				return reported(err)
			}
			a.render.Notice("Listing #" + strconv.FormatInt(item.ID, 10) + " created.")
			return nil
		}),
	}
	cmd.Flags().StringVar(&fields.Name, "name", "", "title")
	cmd.Flags().StringVar(&fields.Price, "price", "", "price in INR")
	cmd.Flags().StringVar(&fields.ImageURL, "image-url", "", "image URL (max 500 characters)")
	cmd.Flags().StringVar(&file, "file", "", "local image to upload instead of --image-url")
	cmd.Flags().StringVar(&fields.CategoryID, "category", "", "category id (default: first category)")
	cmd.Flags().StringVar(&cond, "condition", "", "condition (default GOOD)")
	cmd.Flags().StringVar(&fields.Description, "description", "", "description")
	return cmd
}

func newDeleteCmd(withApp wrapper) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing you own (or any listing as an admin)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewItems); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := usecase.NewItemUsecase(a.client, a.sessions).GetItem(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}

			e := usecase.NewListingEngine(a.client, a.client, a.client, a.sessions, a.listingQuery(), a.log.Named("listing"))
			_ = e.Mount(cmd.Context())
			if err := e.Delete(cmd.Context(), *item, a.confirmer(yes)); err != nil {
				if errors.Is(err, usecase.ErrCancelled) {
					return nil
				}
				if st := e.Snapshot(); st.Error != "" {
					a.render.Notice(st.Error)
					return reported(err)
				}
				return fail(err)
			}
			a.render.Notice("Item deleted.")
			a.render.Listing(e.Snapshot(), a.sessions.Current())
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCategoriesCmd(withApp wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewItems); err != nil {
				return err
			}
			cats, err := usecase.NewCategoryUsecase(a.client, a.log.Named("category")).List(cmd.Context())
			if err != nil {
				return fail(err)
			}
			a.render.Categories(cats)
			return nil
		}),
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
