package services

// Services defined in this package:
// - LedgerService: records and retracts interaction actions
// - CounterService: applies atomic counter deltas to targets and actors
// - CommentService: manages comments and the rating aggregates they feed
// - GroupService: manages groups and membership
// - WorkflowService: runs moderation processes and their activities
// - ContentService: manages posts and events through their lifecycle
// - ConsumerService: read access to consumer profiles
