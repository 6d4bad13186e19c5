package commands

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

var (
	tokenRole string
	tokenTTL  time.Duration
)

var knownRoles = []string{
	service.RoleClient,
	service.RoleFreelancer,
	service.RoleModerator,
	service.RoleMediator,
	service.RoleAdmin,
}

// TokenCmd выпускает access токен, подписанный JWT_SECRET.
var TokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Выпустить access токен для отладки",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(knownRoles, tokenRole) {
			return fmt.Errorf("token: неизвестная роль %q, допустимы %v", tokenRole, knownRoles)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ttl := cfg.AccessTokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}

		token, err := service.NewTokenManager(cfg.JWTSecret, ttl).Issue(args[0], tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	TokenCmd.Flags().StringVarP(&tokenRole, "role", "r", service.RoleModerator, "роль пользователя")
	TokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "срок жизни (по умолчанию ACCESS_TOKEN_TTL)")
}
