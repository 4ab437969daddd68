package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/davecheney/linkpub/internal/webfinger"
	"github.com/go-json-experiment/json"
)

type FetchActorCmd struct {
	Actor string `arg:"" help:"URI, or user@host, of the actor to fetch."`
}

func (f *FetchActorCmd) Run(ctx *Context) error {
	env, err := ctx.env(context.Background())
	if err != nil {
		return err
	}
	uri, err := resolve(context.Background(), f.Actor)
	if err != nil {
		return err
	}
	var obj map[string]any
	if err := env.Client.Fetch(context.Background(), uri, &obj); err != nil {
		return fmt.Errorf("failed to fetch actor: %w", err)
	}
	return json.MarshalOptions{}.MarshalFull(json.EncodeOptions{Indent: "  "}, os.Stdout, obj)
}

// resolve returns the URI of the actor, looking up user@host forms with
// webfinger.
func resolve(ctx context.Context, actor string) (string, error) {
	if strings.HasPrefix(actor, "https://") || strings.HasPrefix(actor, "http://") {
		return actor, nil
	}
	acct, err := webfinger.Parse(actor)
	if err != nil {
		return "", err
	}
	wf, err := acct.Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("webfinger %s: %w", acct, err)
	}
	return wf.ActivityPub()
}
