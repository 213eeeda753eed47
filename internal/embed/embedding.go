package embed

// Provider defines an interface for computing embeddings from text.
type Provider interface {
	// ComputeEmbedding returns the embedding vector for a single text.
	ComputeEmbedding(text string) ([]float64, error)
	// ComputeEmbeddings returns one embedding per input text, in order.
	ComputeEmbeddings(texts []string) ([][]float64, error)
}
