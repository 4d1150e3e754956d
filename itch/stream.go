package itch

import (
	"io"
	"sync"
)

// Stats are the per-run counters reported to the user: one bucket per
// failure reason plus the success count.
type Stats struct {
	Frames            uint64
	Decoded           uint64
	EmptyPayload      uint64
	UnknownType       uint64
	LengthOutOfRange  uint64
	FieldDecodeErrors uint64
}

// Failed returns the total number of decode-failure records.
func (s Stats) Failed() uint64 {
	return s.EmptyPayload + s.UnknownType + s.LengthOutOfRange + s.FieldDecodeErrors
}

// Stream is the lazy record sequence over one byte source: finite,
// single-pass, not restartable without re-opening the source.
//
// Message-level failures are delivered as *Unparsed records and never end
// the stream. Framing errors are fatal: Next returns a *FrameError and
// every later call returns the same error. A clean end of stream is
// io.EOF.
type Stream struct {
	fr     *FrameReader
	dec    *Decoder
	logger Logger
	max    uint64

	stats Stats
	done  bool
	err   error

	// parallel pipeline, active when processors > 1
	parallel bool
	out      chan Record
	stop     chan struct{}
	stopOnce sync.Once
	pipeErr  error
	finalErr error
}

// NewStream returns a stream decoding frames from r.
func NewStream(r io.Reader, opts ...Option) (*Stream, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}
	fr, err := NewFrameReader(r, o.lengthPrefixSize)
	if err != nil {
		return nil, err
	}
	s := &Stream{
		fr:     fr,
		dec:    NewDecoder(o.registry, o.session),
		logger: o.logger,
		max:    o.maxMessages,
	}
	if o.processorCount > 1 {
		s.parallel = true
		s.stop = make(chan struct{})
		s.out = make(chan Record, o.bufferSize)
		s.startPipeline(o.processorCount, o.bufferSize)
	}
	return s, nil
}

// Next returns the next record in stream order.
func (s *Stream) Next() (Record, error) {
	if s.done {
		return nil, s.err
	}
	if s.parallel {
		return s.nextParallel()
	}
	if s.max > 0 && s.stats.Frames >= s.max {
		s.finish(io.EOF)
		return nil, io.EOF
	}
	f, err := s.fr.Next()
	if err != nil {
		if err != io.EOF {
			s.logger.Errorf("itch: stream terminated: %v", err)
		}
		s.finish(err)
		return nil, err
	}
	rec := s.dec.Decode(f)
	s.count(rec)
	return rec, nil
}

// Stats returns the counters accumulated so far. It must be called from
// the goroutine consuming Next.
func (s *Stream) Stats() Stats {
	return s.stats
}

// Close stops the pipeline goroutines of a parallel stream. Stopping is
// safe between frames since no cross-frame decode state exists. Close is
// a no-op for a sequential stream.
func (s *Stream) Close() error {
	if s.stop != nil {
		s.stopOnce.Do(func() { close(s.stop) })
	}
	return nil
}

func (s *Stream) finish(err error) {
	s.done = true
	s.err = err
}

func (s *Stream) count(rec Record) {
	s.stats.Frames++
	u, ok := rec.(*Unparsed)
	if !ok {
		s.stats.Decoded++
		return
	}
	switch u.Reason {
	case ReasonEmptyPayload:
		s.stats.EmptyPayload++
	case ReasonUnknownType:
		s.stats.UnknownType++
	case ReasonLengthOutOfRange:
		s.stats.LengthOutOfRange++
	case ReasonFieldDecode:
		s.stats.FieldDecodeErrors++
	}
}

func (s *Stream) nextParallel() (Record, error) {
	rec, ok := <-s.out
	if !ok {
		err := s.finalErr
		if err == nil {
			err = io.EOF
		}
		s.finish(err)
		return nil, err
	}
	s.count(rec)
	return rec, nil
}

// startPipeline runs the reader, the decode workers and the re-order
// stage. Sequence indices are assigned by the frame reader in input
// order; the re-order stage restores that order before records reach the
// consumer, so parallelism never changes what the sink observes.
func (s *Stream) startPipeline(workers, buffer int) {
	frames := make(chan RawFrame, buffer)
	results := make(chan Record, buffer)

	go func() {
		defer close(frames)
		var n uint64
		for {
			if s.max > 0 && n >= s.max {
				return
			}
			f, err := s.fr.Next()
			if err != nil {
				if err != io.EOF {
					s.logger.Errorf("itch: stream terminated: %v", err)
					s.pipeErr = err
				}
				return
			}
			n++
			select {
			case frames <- f:
			case <-s.stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for f := range frames {
				select {
				case results <- s.dec.Decode(f):
				case <-s.stop:
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(s.out)
		pending := make(map[uint64]Record)
		var next uint64
		emit := func(rec Record) bool {
			select {
			case s.out <- rec:
				return true
			case <-s.stop:
				return false
			}
		}
		drain := func() bool {
			for {
				rec, ok := pending[next]
				if !ok {
					return true
				}
				delete(pending, next)
				if !emit(rec) {
					return false
				}
				next++
			}
		}
		for rec := range results {
			pending[rec.Header().Seq] = rec
			if !drain() {
				return
			}
		}
		if !drain() {
			return
		}
		// The channel-close chain from the reader to here orders this
		// read after the reader's write.
		s.finalErr = s.pipeErr
	}()
}
