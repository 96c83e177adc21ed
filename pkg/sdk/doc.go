// Package docchat provides an embedded Go client for the docchat
// retrieval-augmented question answering pipeline: ingest documents,
// then ask questions against them in conversational sessions.
//
//	client, _ := docchat.New(ctx,
//	    docchat.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    docchat.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	_, _ = client.IngestFile(ctx, "manual.md")
//
//	session, _ := client.NewSession("auto")
//	answer, _ := client.Ask(ctx, session, "How do I reset the device?")
//	fmt.Println(answer.Text, answer.Sources)
//
// Redis is optional: without it the index lives in memory only and
// embeddings are not cached between runs.
package docchat
