// Package aecm implements a fixed-point acoustic echo canceller for mobile
// (AECM) telephony: given a far-end (loudspeaker) reference signal and a
// near-end (microphone) signal, it produces the near-end signal with the
// loudspeaker's echo removed. It operates on 10 ms frames at 8 kHz or
// 16 kHz, in 64-sample blocks internally.
//
// The public entry point is AecMobile, which owns a ring-buffered far-end
// FIFO, a startup state machine, and a per-block AecmCore engine combining
// a binary-spectrum delay estimator, a dual-channel NLMS estimator with
// MSE-based arbitration, and a Wiener/NLP/comfort-noise suppression stage.
package aecm
