package main

import (
	"context"
	"os"
)

type KeysCmd struct{}

func (k *KeysCmd) Run(ctx *Context) error {
	env, err := ctx.env(context.Background())
	if err != nil {
		return err
	}
	kp, err := env.Keys.Get(context.Background())
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(kp.PublicKey)
	return err
}
