package sentence

import "github.com/pkg/errors"

// ErrEmptyCorpus indicates the provider was built with no sentences to draw from.
var ErrEmptyCorpus = errors.New("empty sentence corpus")
