// Package chat is the Twitch IRC surface: it connects the bot account to the
// configured channel, routes recognized commands to their handlers and sends
// replies back in platform-sized chunks. All handler state is loaded fresh
// per invocation; the package holds no caches beyond the IRC connection.
package chat
