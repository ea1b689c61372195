// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
)

// Done is returned by Next when the stream is exhausted.
var Done = errors.New("search: no more records")

// Stream is a finite, non-restartable sequence of records. It fetches one
// page at a time and drains a FIFO buffer between fetches. Not safe for
// concurrent use.
type Stream struct {
	c     *Client
	opts  Options
	fl    []string
	fetch func(ctx context.Context, start, rows int) (*page, error)

	buf       []*Record
	retrieved int
	numFound  int
	started   bool
}

// NumFound returns the total hit count the server reported. Valid after the
// first page has been fetched.
func (s *Stream) NumFound() int { return s.numFound }

// target is the number of records this stream will yield in total.
func (s *Stream) target() int {
	if !s.started {
		return s.opts.Rows
	}
	remaining := s.numFound - s.opts.Start
	if remaining < 0 {
		remaining = 0
	}
	if remaining < s.opts.Rows {
		return remaining
	}
	return s.opts.Rows
}

// Next returns the next record, fetching the next page when the buffer is
// empty. It returns Done once the stream is exhausted; a Done stream stays
// exhausted.
func (s *Stream) Next(ctx context.Context) (*Record, error) {
	if len(s.buf) > 0 {
		return s.pop(), nil
	}

	if s.started && s.retrieved >= s.target() {
		return nil, Done
	}

	rows := s.target() - s.retrieved
	if rows > s.opts.PageSize {
		rows = s.opts.PageSize
	}
	if rows <= 0 {
		return nil, Done
	}

	p, err := s.fetch(ctx, s.opts.Start+s.retrieved, rows)
	if err != nil {
		return nil, err
	}
	s.numFound = p.numFound
	s.started = true

	if len(p.docs) == 0 {
		return nil, Done
	}
	for _, doc := range p.docs {
		s.buf = append(s.buf, newRecord(s.c, doc))
	}
	s.retrieved += len(p.docs)
	return s.pop(), nil
}

func (s *Stream) pop() *Record {
	r := s.buf[0]
	s.buf = s.buf[1:]
	return r
}

// All drains the stream into a slice.
func (s *Stream) All(ctx context.Context) ([]*Record, error) {
	var out []*Record
	for {
		r, err := s.Next(ctx)
		if errors.Is(err, Done) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
}
