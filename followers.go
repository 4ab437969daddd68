package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

type FollowersCmd struct {
	Remove string `help:"id of a follower to remove."`
}

func (f *FollowersCmd) Run(ctx *Context) error {
	env, err := ctx.env(context.Background())
	if err != nil {
		return err
	}
	if f.Remove != "" {
		removed, err := env.Followers.Remove(context.Background(), f.Remove)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%s is not a follower", f.Remove)
		}
		fmt.Println("removed", f.Remove)
		return nil
	}

	followers, err := env.Followers.List(context.Background())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINBOX\tFOLLOWED")
	for _, follower := range followers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", follower.ID, follower.EffectiveInbox(), follower.FollowedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
