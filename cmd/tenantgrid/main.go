// Command tenantgrid answers "which accounts, and which users, fall under this
// account's administrative hierarchy?" against a remote account service.
//
// Usage:
//
//	tenantgrid -config config.yaml related -account 100 [-axis managed] [-no-self]
//	tenantgrid -config config.yaml users -accounts 100,200,300
//	tenantgrid -config config.yaml users -account 100 [-axis managed]
//	tenantgrid -config config.yaml ancestors -account 100 [-stop-at 1] [-tolerant]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tenantgrid/tenantgrid/api"
	"github.com/tenantgrid/tenantgrid/hierarchy"
	"github.com/tenantgrid/tenantgrid/internal/cache"
	"github.com/tenantgrid/tenantgrid/internal/config"
	"github.com/tenantgrid/tenantgrid/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (env vars override; see TENANTGRID_*)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall command deadline")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New("tenantgrid", cfg.LogLevel)

	var responseCache cache.Cache
	if cfg.CacheTTL() > 0 {
		if cfg.Redis.Addr != "" {
			redisCache, err := cache.NewRedis(context.Background(), cache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				log.Fatalf("connect redis cache: %v", err)
			}
			defer redisCache.Close()
			responseCache = redisCache
		} else {
			memCache := cache.NewMemory(time.Minute)
			defer memCache.Close()
			responseCache = memCache
		}
	}

	client, err := api.New(api.Config{
		BaseURL:           cfg.BaseURL,
		Username:          cfg.Username,
		Password:          cfg.Password,
		APIKey:            cfg.APIKey,
		Timeout:           cfg.Timeout(),
		Cache:             responseCache,
		CacheTTL:          cfg.CacheTTL(),
		RequestsPerSecond: cfg.RequestsPerSec,
		Logger:            appLog,
	})
	if err != nil {
		log.Fatalf("build client: %v", err)
	}

	svc := hierarchy.New(client, client, appLog)
	if cfg.FanOutLimit > 0 {
		svc.WithFanOutLimit(cfg.FanOutLimit)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	switch args[0] {
	case "related":
		err = runRelated(ctx, svc, args[1:])
	case "users":
		err = runUsers(ctx, svc, args[1:])
	case "ancestors":
		err = runAncestors(ctx, svc, args[1:])
	default:
		log.Fatalf("unknown subcommand %q (want related, users, or ancestors)", args[0])
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func runRelated(ctx context.Context, svc *hierarchy.Service, args []string) error {
	fs := flag.NewFlagSet("related", flag.ExitOnError)
	account := fs.String("account", "", "Root account id")
	axisName := fs.String("axis", "managed", "Relationship axis: managed, managing, or bills_to")
	noSelf := fs.Bool("no-self", false, "Omit the root account id from the output")
	fs.Parse(args)

	if *account == "" {
		return fmt.Errorf("-account is required")
	}
	axis, err := hierarchy.ParseAxis(*axisName)
	if err != nil {
		return err
	}

	ids, err := svc.RelatedAccountIDs(ctx, *account, axis, !*noSelf)
	if err != nil {
		return err
	}
	return printJSON(ids)
}

func runUsers(ctx context.Context, svc *hierarchy.Service, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	accounts := fs.String("accounts", "", "Comma-separated account ids to aggregate")
	account := fs.String("account", "", "Resolve this account's hierarchy first, then aggregate")
	axisName := fs.String("axis", "managed", "Axis used with -account")
	fs.Parse(args)

	var ids []string
	switch {
	case *accounts != "":
		for _, id := range strings.Split(*accounts, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	case *account != "":
		axis, err := hierarchy.ParseAxis(*axisName)
		if err != nil {
			return err
		}
		resolved, err := svc.RelatedAccountIDs(ctx, *account, axis, true)
		if err != nil {
			return err
		}
		ids = resolved
	default:
		return fmt.Errorf("one of -accounts or -account is required")
	}

	users, err := svc.CollectUsers(ctx, ids)
	if err != nil {
		return err
	}
	return printJSON(users)
}

func runAncestors(ctx context.Context, svc *hierarchy.Service, args []string) error {
	fs := flag.NewFlagSet("ancestors", flag.ExitOnError)
	account := fs.String("account", "", "Leaf account id")
	stopAt := fs.String("stop-at", "", "Terminal account id at which to stop ascending")
	tolerant := fs.Bool("tolerant", false, "Return accumulated users instead of failing on a fetch error")
	fs.Parse(args)

	if *account == "" {
		return fmt.Errorf("-account is required")
	}

	users, err := svc.AncestorUsers(ctx, *account, hierarchy.WalkOptions{
		StopAt:   *stopAt,
		Tolerant: *tolerant,
	})
	if err != nil {
		return err
	}
	return printJSON(users)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
