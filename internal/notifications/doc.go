// Package notifications announces run outcomes over ntfy.
//
// The topic comes from [notifications] in config.toml (or NTFY_TOPIC). A bare
// topic name is published on ntfy.sh; a full URL targets a self-hosted
// server. With no topic configured the service is a no-op.
package notifications
