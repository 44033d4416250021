// signal-verify is the sandbox-side gate. It fetches the subject's current
// signal payload over the checkout's own git remote, verifies it against the
// enrolled authority key, and exits 0 (allow) or 1 (deny). The deny reason
// goes to stderr; the exit code alone never carries the explanation.
//
// Any unexpected failure — missing config, unreachable remote, panic in a
// dependency — resolves to deny. There is no partial-trust outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pulsegate/signal-service/internal/transport"
	"github.com/pulsegate/signal-service/internal/verifier"
)

const (
	exitAllow = 0
	exitDeny  = 1
)

func main() {
	var (
		configPath string
		dir        string
	)
	flag.StringVar(&configPath, "config", defaultConfigPath(), "enrollment config file")
	flag.StringVar(&dir, "dir", ".", "repository checkout to fetch through")
	flag.Parse()

	os.Exit(run(configPath, dir))
}

func run(configPath, dir string) int {
	defer func() {
		// fail closed even on a panic below
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "deny: internal: %v\n", r)
			os.Exit(exitDeny)
		}
	}()

	cfg, err := verifier.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deny: %s: %v\n", verifier.ReasonConfigMissing, err)
		return exitDeny
	}

	v := verifier.Verifier{Fetcher: transport.GitFetcher{Dir: dir}}
	res := v.Verify(context.Background(), cfg)
	if !res.Allow {
		fmt.Fprintf(os.Stderr, "deny: %s: %s\n", res.Reason, res.Detail)
		return exitDeny
	}
	// session id on stdout for downstream attribution only
	fmt.Println(res.SessionID)
	return exitAllow
}

func defaultConfigPath() string {
	if p := os.Getenv("PULSEGATE_CONFIG"); p != "" {
		return p
	}
	return ".pulsegate.yml"
}
