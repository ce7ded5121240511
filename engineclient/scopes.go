package engineclient

// Scope switches the client into non-blocking mode for its lifetime,
// batching replies instead of waiting on each one. Close (usually deferred
// right after NewScope) drains every pending reply before returning,
// so callers observe engine errors from anywhere in the batch.
//
// Usage:
//
//	scope := c.NewScope()
//	defer scope.Close()
//	... issue several commands ...
type Scope struct {
	c    *Client
	prev bool
}

// NewScope enters non-blocking mode. Nesting is supported: an inner scope
// restores the outer scope's mode rather than unconditionally blocking.
func (c *Client) NewScope() *Scope {
	s := &Scope{c: c, prev: c.nonBlk}
	c.nonBlk = true
	return s
}

// Close drains all replies accumulated since the scope was entered and
// restores the previous blocking mode. The first engine-reported error
// encountered while draining is returned; draining continues past it so the
// pending counter is always fully consumed.
func (s *Scope) Close() error {
	var first error
	if !s.prev {
		first = s.c.drain()
	}
	s.c.nonBlk = s.prev
	return first
}

// drain reads and discards (but reports the first error from) every
// outstanding non-blocking reply.
func (c *Client) drain() error {
	if c.dummy {
		c.pending = 0
		return nil
	}
	var first error
	for c.pending > 0 {
		c.pending--
		if _, err := c.readReply(ResponseNone); err != nil && first == nil {
			first = err
			c.logger.Warn().Err(err).Msg("engineclient: error draining batched reply")
		}
	}
	return first
}

// FadeScope is a Scope that additionally wraps the batch in an audio
// fade-out/processing-disable at entry and processing-enable/fade-in at
// exit, so a burst of topology changes never produces an audible glitch.
type FadeScope struct {
	inner *Scope
	c     *Client
}

// NewFadeScope disables processing with a fade-out, then enters a Scope for
// the duration of the caller's batch of mutations.
func (c *Client) NewFadeScope() (*FadeScope, error) {
	if err := c.FeatureEnableProcessing(ProcessingOffWithFadeOut); err != nil {
		return nil, err
	}
	return &FadeScope{inner: c.NewScope(), c: c}, nil
}

// Close drains the batch, then re-enables processing with a fade-in.
func (f *FadeScope) Close() error {
	err := f.inner.Close()
	if ferr := f.c.FeatureEnableProcessing(ProcessingOnWithFadeIn); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
