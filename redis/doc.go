// Package redis wraps go-redis with the gateway's logging and configuration
// conventions.
//
// TypedStore layers JSON-serialized records on top of a Client. Create is
// atomic: the record is written only if its key is free, and the key is
// added to an index set in the same server-side script, so the index never
// lists a record that does not exist.
//
//	client, err := redis.New(cfg, log)
//	users := redis.NewTypedStore[User](client, "authgate:user", "authgate:users")
//	created, err := users.Create(ctx, "alice", &u)
package redis
