// Package inference implements the model-inference classification stage: it
// builds a bounded taxonomy context, asks a structured-inference provider for
// a classification, and falls back to embedding similarity when the provider
// fails. The stage never raises; total provider failure degrades to a fixed
// low-confidence result that forces human review downstream.
package inference
