package core

// Transformer mutates a page of messages in place before it is rendered.
type Transformer interface {
	Transform(p *Page) error
}

// Chain applies transformers in order, stopping at the first error.
func Chain(p *Page, transformers ...Transformer) error {
	for _, tr := range transformers {
		if err := tr.Transform(p); err != nil {
			return err
		}
	}
	return nil
}
