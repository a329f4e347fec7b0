package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/meta"
	"github.com/1F47E/go-framereel/pkg/tui"
	"github.com/1F47E/go-framereel/pkg/video"
)

var log = logger.Log

var (
	ErrNoFrames        = errors.New("no frames in range")
	ErrSinkUnavailable = errors.New("video sink unavailable")
	ErrSinkWrite       = errors.New("video sink write failed")
	ErrFrameGeometry   = fmt.Errorf("frame does not match video: %w", video.ErrGeometry)
)

// State of one subject's assembly.
type State int

const (
	StateInit State = iota
	StateDimensioning
	StateStreaming
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateDimensioning:
		return "DIMENSIONING"
	case StateStreaming:
		return "STREAMING"
	case StateClosed:
		return "CLOSED"
	case StateError:
		return "ERROR"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Publisher ships a finished video somewhere else, e.g. object storage.
type Publisher interface {
	Publish(ctx context.Context, path string, m meta.Metadata) (string, error)
}

type Core struct {
	ctx       context.Context
	cfg       config.Config
	opener    video.Opener
	publisher Publisher
	eventsCh  chan<- tui.Event
	runID     string
}

type Option func(*Core)

func WithPublisher(p Publisher) Option {
	return func(c *Core) {
		c.publisher = p
	}
}

func WithRunID(id string) Option {
	return func(c *Core) {
		c.runID = id
	}
}

// NewCore builds a core for one run. eventsCh may be nil.
func NewCore(ctx context.Context, cfg config.Config, opener video.Opener, eventsCh chan<- tui.Event, opts ...Option) *Core {
	c := &Core{
		ctx:      ctx,
		cfg:      cfg,
		opener:   opener,
		eventsCh: eventsCh,
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Core) RunID() string {
	return c.runID
}

// emit never blocks past cancellation, a nil channel drops events.
func (c *Core) emit(e tui.Event) {
	if c.eventsCh == nil {
		return
	}
	select {
	case c.eventsCh <- e:
	case <-c.ctx.Done():
	}
}
