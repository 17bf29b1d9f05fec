// Package posting models the marketplace posting ("annonce"): what a client or
// provider asks to have delivered. The package owns the posting status and the
// few moves the delivery lifecycle may request on it (reserve, release,
// complete, align). Every move returns a Change that persistence applies as a
// compare-and-set, so a concurrent writer surfaces as a conflict instead of a
// lost update.
package posting
