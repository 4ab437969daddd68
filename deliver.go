package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-json-experiment/json"
)

type DeliverCmd struct {
	Link string `required:"" help:"id of the link to deliver."`
}

func (d *DeliverCmd) Run(ctx *Context) error {
	env, err := ctx.env(context.Background())
	if err != nil {
		return err
	}
	link, err := env.Links.Find(context.Background(), d.Link)
	if err != nil {
		return fmt.Errorf("%s: %w", d.Link, err)
	}
	create := env.Composer.WrapInCreate(env.Composer.LinkToNote(link))
	summary, err := env.Deliverer.DeliverToFollowers(context.Background(), create)
	if err != nil {
		return err
	}
	return json.MarshalOptions{}.MarshalFull(json.EncodeOptions{Indent: "  "}, os.Stdout, summary)
}
