package chat

import (
	"context"

	"github.com/kailas-cloud/docchat/internal/usecase/answer"
	"github.com/kailas-cloud/docchat/internal/usecase/retrieve"
)

// Retriever finds the chunks relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) (retrieve.Result, error)
}

// Answerer generates the reply from retrieved context and history.
type Answerer interface {
	Answer(ctx context.Context, req answer.Request) (answer.Result, error)
}
