package config

const (
	// TopicIngestTask is the NSQ topic carrying video ingestion requests.
	TopicIngestTask = "ingest.task"

	// ChannelIngest is the consumer channel the ingestion worker reads from.
	ChannelIngest = "ingester"
)
