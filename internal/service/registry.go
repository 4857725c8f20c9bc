package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"queryforge/internal/core"
)

// ConnectionRegistry is the business layer over the credential store. It
// validates connection specs, keeps secrets encrypted at rest, and offers a
// stateless probe against unsaved descriptors.
type ConnectionRegistry struct {
	connRepo     core.ConnectionRepository
	cryptoSvc    *EncryptionService
	executor     core.Executor
	probeTimeout time.Duration
}

func NewConnectionRegistry(connRepo core.ConnectionRepository, cryptoSvc *EncryptionService, executor core.Executor, probeTimeout time.Duration) *ConnectionRegistry {
	return &ConnectionRegistry{
		connRepo:     connRepo,
		cryptoSvc:    cryptoSvc,
		executor:     executor,
		probeTimeout: probeTimeout,
	}
}

// ConnectionSpec carries the write-path fields of a connection, secret
// included. It is never persisted as-is.
type ConnectionSpec struct {
	Name     string `json:"name"`
	Dialect  string `json:"dialect"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Secret   string `json:"password"`
}

func (s ConnectionSpec) validate() (core.Dialect, error) {
	dialect, err := core.ParseDialect(s.Dialect)
	if err != nil {
		return "", err
	}
	switch {
	case strings.TrimSpace(s.Name) == "":
		return "", fmt.Errorf("%w: name is required", core.ErrInvalidArgument)
	case strings.TrimSpace(s.Host) == "":
		return "", fmt.Errorf("%w: host is required", core.ErrInvalidArgument)
	case s.Port < 1 || s.Port > 65535:
		return "", fmt.Errorf("%w: port must be between 1 and 65535", core.ErrInvalidArgument)
	case strings.TrimSpace(s.Database) == "":
		return "", fmt.Errorf("%w: database is required", core.ErrInvalidArgument)
	case strings.TrimSpace(s.Username) == "":
		return "", fmt.Errorf("%w: username is required", core.ErrInvalidArgument)
	case s.Secret == "":
		return "", fmt.Errorf("%w: password is required", core.ErrInvalidArgument)
	}
	return dialect, nil
}

// Create registers a connection. The first connection a user registers
// becomes primary; later ones do not touch the primary flag.
func (r *ConnectionRegistry) Create(userID string, spec ConnectionSpec) (*core.Connection, error) {
	dialect, err := spec.validate()
	if err != nil {
		return nil, err
	}

	secretEnc, err := r.cryptoSvc.Encrypt(spec.Secret)
	if err != nil {
		return nil, fmt.Errorf("encrypt connection secret: %w", err)
	}

	conn := &core.Connection{
		ID:        core.NewID("conn"),
		UserID:    userID,
		Name:      strings.TrimSpace(spec.Name),
		Dialect:   dialect,
		Host:      spec.Host,
		Port:      spec.Port,
		Database:  spec.Database,
		Username:  spec.Username,
		SecretEnc: secretEnc,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.connRepo.Create(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *ConnectionRegistry) List(userID string) ([]core.Connection, error) {
	return r.connRepo.ListByUser(userID)
}

func (r *ConnectionRegistry) Get(userID, id string) (*core.Connection, error) {
	return r.connRepo.GetByID(userID, id)
}

// ConnectionUpdate applies only the fields that are present. The primary
// flag is absent on purpose: flipping it goes through SetPrimary so the
// single-primary invariant cannot be broken by a partial update.
type ConnectionUpdate struct {
	Name     *string `json:"name"`
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	Database *string `json:"database"`
	Username *string `json:"username"`
	Secret   *string `json:"password"`
}

func (r *ConnectionRegistry) Update(userID, id string, upd ConnectionUpdate) (*core.Connection, error) {
	conn, err := r.connRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", core.ErrInvalidArgument)
		}
		if name != conn.Name {
			inUse, err := r.connRepo.NameInUse(userID, name, id)
			if err != nil {
				return nil, err
			}
			if inUse {
				return nil, core.ErrDuplicateName
			}
		}
		conn.Name = name
	}
	if upd.Host != nil {
		conn.Host = *upd.Host
	}
	if upd.Port != nil {
		if *upd.Port < 1 || *upd.Port > 65535 {
			return nil, fmt.Errorf("%w: port must be between 1 and 65535", core.ErrInvalidArgument)
		}
		conn.Port = *upd.Port
	}
	if upd.Database != nil {
		conn.Database = *upd.Database
	}
	if upd.Username != nil {
		conn.Username = *upd.Username
	}
	if upd.Secret != nil {
		secretEnc, err := r.cryptoSvc.Encrypt(*upd.Secret)
		if err != nil {
			return nil, fmt.Errorf("encrypt connection secret: %w", err)
		}
		conn.SecretEnc = secretEnc
	}

	now := time.Now().UTC()
	conn.UpdatedAt = &now
	if err := r.connRepo.Update(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *ConnectionRegistry) Delete(userID, id string) error {
	return r.connRepo.Delete(userID, id)
}

// SetPrimary promotes the connection and demotes all others of the user in
// one atomic store operation.
func (r *ConnectionRegistry) SetPrimary(userID, id string) (*core.Connection, error) {
	if err := r.connRepo.SetPrimary(userID, id); err != nil {
		return nil, err
	}
	return r.connRepo.GetByID(userID, id)
}

// ProbeResult reports a connectivity check. Driver failures are data here,
// not faults: a dead database is a valid answer.
type ProbeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Probe runs a live reachability check against a transient, unsaved
// descriptor. Nothing is persisted.
func (r *ConnectionRegistry) Probe(ctx context.Context, spec ConnectionSpec) ProbeResult {
	dialect, err := spec.validate()
	if err != nil {
		return ProbeResult{Success: false, Message: err.Error()}
	}

	target := core.ConnectionTarget{
		Dialect:  dialect,
		Host:     spec.Host,
		Port:     spec.Port,
		Database: spec.Database,
		Username: spec.Username,
		Secret:   spec.Secret,
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	if err := r.executor.Ping(probeCtx, target); err != nil {
		return ProbeResult{Success: false, Message: fmt.Sprintf("connection test failed: %v", err)}
	}
	return ProbeResult{Success: true, Message: "connection test successful"}
}
