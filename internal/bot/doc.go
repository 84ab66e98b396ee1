// Package bot provides the algorithmic opponents: a fixed-weight sampler,
// an adaptive sampler that learns from its own win rate, and the registry of
// named opponent profiles the player chooses from.
package bot
