package main

import (
	"errors"

	"github.com/spf13/cobra"
	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/router"
	"jo3qma.com/bookswap_client/internal/usecase"
)

func newAdminCmd(withApp wrapper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator views (the server rejects non-admin sessions)",
	}
	cmd.AddCommand(
		newAdminStatsCmd(withApp),
		newAdminUsersCmd(withApp),
		newAdminItemsCmd(withApp),
		newAdminDeleteCmd(withApp),
		newAdminCategoryCmd(withApp),
	)
	return cmd
}

func newAdminStatsCmd(withApp wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show marketplace totals",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminAnalytics); err != nil {
				return err
			}
			an := usecase.NewAdminAnalytics(a.client, a.cfg.Admin.PageSize, a.log.Named("admin"))
			err := an.Load(cmd.Context(), 0)
			st := an.State()
			st.Users = nil
			a.render.Analytics(st)
			return reported(err)
		}),
	}
}

func newAdminUsersCmd(withApp wrapper) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Show user analytics",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminAnalytics); err != nil {
				return err
			}
			an := usecase.NewAdminAnalytics(a.client, a.cfg.Admin.PageSize, a.log.Named("admin"))
			err := an.Load(cmd.Context(), page-1)
			a.render.Analytics(an.State())
			return reported(err)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	return cmd
}

func newAdminItemsCmd(withApp wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "List the most recent listings for moderation",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminItems); err != nil {
				return err
			}
			c := usecase.NewAdminCatalog(a.client, a.client, a.cfg.Admin.CatalogSize, a.log.Named("admin"))
			err := c.Load(cmd.Context())
			a.render.Catalog(c.State())
			return reported(err)
		}),
	}
}

func newAdminDeleteCmd(withApp wrapper) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete any listing as an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminItems); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := usecase.NewAdminCatalog(a.client, a.client, a.cfg.Admin.CatalogSize, a.log.Named("admin"))
			if err := c.Delete(cmd.Context(), id, a.confirmer(yes)); err != nil {
				if errors.Is(err, usecase.ErrCancelled) {
					return nil
				}
				a.render.Notice(c.State().Error)
				return reported(err)
			}
			a.render.Notice("Item deleted.")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newAdminCategoryCmd(withApp wrapper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var in model.CategoryInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminItems); err != nil {
				return err
			}
			c, err := usecase.NewCategoryUsecase(a.client, a.log.Named("category")).Create(cmd.Context(), in)
			if err != nil {
				return fail(err)
			}
			a.render.Categories([]model.Category{*c})
			return nil
		}),
	}
	create.Flags().StringVar(&in.Name, "name", "", "category name")
	create.Flags().StringVar(&in.Description, "description", "", "description")

	var upd model.CategoryInput
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or describe a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminItems); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := usecase.NewCategoryUsecase(a.client, a.log.Named("category")).Update(cmd.Context(), id, upd)
			if err != nil {
				return fail(err)
			}
			a.render.Categories([]model.Category{*c})
			return nil
		}),
	}
	update.Flags().StringVar(&upd.Name, "name", "", "category name")
	update.Flags().StringVar(&upd.Description, "description", "", "description")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.enter(router.ViewAdminItems); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			err = usecase.NewCategoryUsecase(a.client, a.log.Named("category")).Delete(cmd.Context(), id, a.confirmer(yes))
			if errors.Is(err, usecase.ErrCancelled) {
				return nil
			}
			if err != nil {
				return fail(err)
			}
			a.render.Notice("Category deleted.")
			return nil
		}),
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(create, update, del)
	return cmd
}
