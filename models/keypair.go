package models

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davecheney/linkpub/internal/crypto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// localKeyID is the primary key of the local actor's key pair. There is
// only ever one row.
const localKeyID = 1

// KeyPair is the local actor's RSA key material in PEM form.
type KeyPair struct {
	ID         uint32 `gorm:"primarykey;autoIncrement:false"`
	PublicKey  []byte `gorm:"type:blob;not null"`
	PrivateKey []byte `gorm:"type:blob;not null"`
	CreatedAt  time.Time
}

// PrivKey returns the parsed private key.
func (k *KeyPair) PrivKey() (*rsa.PrivateKey, error) {
	return crypto.ParseRSAPrivateKey(k.PrivateKey)
}

// PubKey returns the parsed public key.
func (k *KeyPair) PubKey() (*rsa.PublicKey, error) {
	return crypto.ParseRSAPublicKey(k.PublicKey)
}

// Keys owns the local actor's key pair.
type Keys struct {
	db *gorm.DB

	mu  sync.Mutex
	key *KeyPair
}

func NewKeys(db *gorm.DB) *Keys {
	return &Keys{db: db}
}

// Get returns the persisted key pair, generating and storing one if none
// exists. Concurrent callers, in this process or another sharing the
// database, all observe the same winning key pair: the insert is a
// compare-and-swap on the singleton row and the result is always re-read.
func (k *Keys) Get(ctx context.Context) (*KeyPair, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.key != nil {
		return k.key, nil
	}

	db := k.db.WithContext(ctx)
	var kp KeyPair
	err := db.Take(&kp, "id = ?", localKeyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		generated, gerr := crypto.GenerateRSAKeypair()
		if gerr != nil {
			return nil, fmt.Errorf("keys: generate: %w", gerr)
		}
		candidate := &KeyPair{
			ID:         localKeyID,
			PublicKey:  generated.PublicKey,
			PrivateKey: generated.PrivateKey,
			CreatedAt:  time.Now().UTC(),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(candidate).Error; err != nil {
			return nil, fmt.Errorf("keys: store: %w", err)
		}
		err = db.Take(&kp, "id = ?", localKeyID).Error
	}
	if err != nil {
		return nil, fmt.Errorf("keys: load: %w", err)
	}
	if _, err := kp.PrivKey(); err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	k.key = &kp
	return k.key, nil
}
