// Command operator-token mints a bearer token for the operator-only routes
// (manual status overrides and reconciliation), signed with the configured
// JWT secret.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/sbilibin2017/txn-lifecycle/internal/config"
	"github.com/sbilibin2017/txn-lifecycle/internal/jwt"
)

func main() {
	configPath := flag.String("c", "config.env", "Path to configuration file")
	subject := flag.String("sub", "operator", "Token subject")
	role := flag.String("role", jwt.RoleOperator, "Token role: operator or service")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	token, err := mint(context.Background(), cfg.JWT, *subject, *role)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}

func mint(ctx context.Context, cfg config.JWTConfig, subject, role string) (string, error) {
	if role != jwt.RoleOperator && role != jwt.RoleService {
		return "", fmt.Errorf("unknown role %q", role)
	}
	return jwt.New(cfg.SecretKey, cfg.Exp).Generate(ctx, subject, role)
}
