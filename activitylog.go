package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

type ActivityLogCmd struct {
	Limit int `help:"number of entries to show." default:"20"`
}

func (a *ActivityLogCmd) Run(ctx *Context) error {
	env, err := ctx.env(context.Background())
	if err != nil {
		return err
	}
	entries, err := env.ActivityLog.Recent(context.Background(), a.Limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDIR\tTYPE\tACTOR\tTARGET\tSTATUS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Direction, e.Type, e.Actor, e.Target, e.Status, e.Error)
	}
	return tw.Flush()
}
