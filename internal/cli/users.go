package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-profile-cache/domain"
)

// OnboardOptions holds flags for the onboard command.
type OnboardOptions struct {
	*RootOptions
	Email     string
	Name      string
	AvatarURL string
	Color     string
	By        string
	Admin     bool
	SkipCache bool
}

// NewOnboardCommand creates the onboard command.
func NewOnboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OnboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create a user",
		Long: `Create a user and drop the cached tally of its favorite color.

Example:
  profilectl onboard --email ada@example.com --avatar-url https://example.com/ada.png --color red`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnboard(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "user email")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.AvatarURL, "avatar-url", "", "avatar URL")
	cmd.Flags().StringVar(&opts.Color, "color", "", "favorite color (red|blue|yellow)")
	cmd.Flags().StringVar(&opts.By, "by", "", "id of the acting user (defaults to the new user)")
	cmd.Flags().BoolVar(&opts.Admin, "admin", false, "the acting user is an admin")
	cmd.Flags().BoolVar(&opts.SkipCache, "skip-cache-invalidation", false, "do not touch cached tallies")

	return cmd
}

func runOnboard(cmd *cobra.Command, opts *OnboardOptions) error {
	container, err := opts.openContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	out := opts.formatter(cmd)
	ctx := commandContext(cmd)
	effects := container.NewEffects(container.Logger())

	input := domain.OnboardUserInput{
		Data: domain.NewUserInput{
			Email:         opts.Email,
			Name:          opts.Name,
			AvatarURL:     opts.AvatarURL,
			FavoriteColor: domain.Color(opts.Color),
		},
		By: domain.Actor{ID: opts.By, IsAdmin: opts.Admin},
	}

	var user domain.User
	if opts.SkipCache {
		user, err = domain.NewOnboarding(effects).OnboardUser(ctx, input)
	} else {
		user, err = domain.NewProfile(effects).OnboardUser(ctx, input)
	}
	if err != nil {
		return out.Fail(err)
	}
	return out.Success(user)
}

// NewUserCommand creates the user command.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rootOpts.openContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			out := rootOpts.formatter(cmd)
			effects := container.NewEffects(container.Logger())
			user, err := domain.NewUsers(effects).FindByID(commandContext(cmd), args[0])
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(user)
		},
	}
}

// NewTallyCommand creates the tally command.
func NewTallyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "tally <color>",
		Short:     "Count the users whose favorite color is <color>",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"red", "blue", "yellow"},
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rootOpts.openContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			out := rootOpts.formatter(cmd)
			effects := container.NewEffects(container.Logger())
			tally, err := domain.NewProfile(effects).FindColorTally(commandContext(cmd), domain.Color(args[0]))
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(tally)
		},
	}
}

// NewRecolorCommand creates the recolor command.
func NewRecolorCommand(rootOpts *RootOptions) *cobra.Command {
	var by string
	var admin bool

	cmd := &cobra.Command{
		Use:   "recolor <id> <color>",
		Short: "Change the favorite color of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rootOpts.openContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			out := rootOpts.formatter(cmd)
			effects := container.NewEffects(container.Logger())
			user, err := domain.NewProfile(effects).UpdateFavoriteColor(
				commandContext(cmd),
				args[0],
				domain.Color(args[1]),
				domain.Actor{ID: by, IsAdmin: admin},
			)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(user)
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "id of the acting user")
	cmd.Flags().BoolVar(&admin, "admin", false, "the acting user is an admin")

	return cmd
}
