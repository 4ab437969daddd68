package activitypub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/internal/crypto"
	"github.com/davecheney/linkpub/internal/httpsig"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/go-json-experiment/json"
	"golang.org/x/exp/slog"
)

// maxActivitySize bounds the size of an inbound activity.
const maxActivitySize = 1 << 20

// Inbox receives activities POSTed to the personal and shared inboxes.
// Activities are acknowledged as soon as they are parsed and are
// dispatched in the background, in arrival order for each actor.
type Inbox struct {
	dispatcher *Dispatcher
	fetcher    fetcher
	// requireSignature rejects activities whose signature does not verify.
	// Otherwise verification failures are only logged.
	requireSignature bool
	logger           *slog.Logger

	wg sync.WaitGroup

	mu sync.Mutex
	// tails holds, for each actor with activities in flight, a channel
	// closed when its most recently received activity has been dispatched.
	tails map[string]chan struct{}
}

func NewInbox(dispatcher *Dispatcher, fetcher fetcher, requireSignature bool, logger *slog.Logger) *Inbox {
	return &Inbox{
		dispatcher:       dispatcher,
		fetcher:          fetcher,
		requireSignature: requireSignature,
		logger:           logger,
		tails:            make(map[string]chan struct{}),
	}
}

// Wait blocks until every activity received so far has been dispatched.
func (i *Inbox) Wait() {
	i.wg.Wait()
}

// InboxCreate handles POSTs to both the actor's inbox and the shared inbox.
func InboxCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	return env.Inbox.create(w, r)
}

// ActorInboxCreate handles POSTs to the actor's personal inbox.
func ActorInboxCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	if err := requireLocalActor(env, r); err != nil {
		return err
	}
	return env.Inbox.create(w, r)
}

func (i *Inbox) create(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActivitySize))
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return httpx.Error(http.StatusBadRequest, fmt.Errorf("malformed activity: %w", err))
	}
	act, err := activitypub.Parse(obj)
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}

	// the request outlives the handler when verification is deferred.
	req := r.Clone(context.Background())
	if i.requireSignature {
		if err := i.verify(r.Context(), req, body, act); err != nil {
			return httpx.Error(http.StatusUnauthorized, err)
		}
	}

	prev, done := i.enqueue(act.ActorID())
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer i.release(act.ActorID(), done)
		defer func() {
			if r := recover(); r != nil {
				i.logger.Error("dispatch panic", "type", act.Type(), "actor", act.ActorID(), "panic", r)
			}
		}()
		if prev != nil {
			<-prev
		}
		ctx := context.Background()
		if !i.requireSignature {
			if err := i.verify(ctx, req, body, act); err != nil {
				i.logger.Warn("signature", "type", act.Type(), "actor", act.ActorID(), "error", err)
			}
		}
		if err := i.dispatcher.Dispatch(ctx, act); err != nil {
			i.logger.Warn("dispatch", "type", act.Type(), "actor", act.ActorID(), "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	return json.MarshalFull(w, map[string]any{
		"status": "accepted",
	})
}

// enqueue registers an activity from actor. It returns a channel that is
// closed once the actor's previous activity has been dispatched, or nil if
// there is none, and the channel to close when this one has.
func (i *Inbox) enqueue(actor string) (prev, done chan struct{}) {
	i.mu.Lock()
	defer i.mu.Unlock()
	prev = i.tails[actor]
	done = make(chan struct{})
	i.tails[actor] = done
	return prev, done
}

func (i *Inbox) release(actor string, done chan struct{}) {
	close(done)
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.tails[actor] == done {
		delete(i.tails, actor)
	}
}

// verify checks the HTTP signature of req against the public key of the
// actor that sent act.
func (i *Inbox) verify(ctx context.Context, req *http.Request, body []byte, act activitypub.Inbound) error {
	header := req.Header.Get("Signature")
	if header == "" {
		return errors.New("request is not signed")
	}
	sig, err := httpsig.ParseSignature(header)
	if err != nil {
		return err
	}
	if !httpsig.VerifyDigest(req, body) {
		return errors.New("digest does not match body")
	}
	var obj map[string]any
	if err := i.fetcher.Fetch(ctx, trimKeyId(sig.KeyID), &obj); err != nil {
		return fmt.Errorf("fetch key %s: %w", sig.KeyID, err)
	}
	signer := activitypub.ActorFromMap(obj)
	if signer.ID != act.ActorID() {
		return fmt.Errorf("signed by %s, not by actor %s", signer.ID, act.ActorID())
	}
	publicKey, err := crypto.ParseRSAPublicKey([]byte(signer.PublicKey.PublicKeyPem))
	if err != nil {
		return err
	}
	if !httpsig.Verify(publicKey, req, header) {
		return errors.New("signature does not verify")
	}
	return nil
}
