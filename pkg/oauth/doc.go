// Package oauth negotiates OAuth2/OIDC client registrations between a Requirer (an
// application that needs a client) and a Provider (an identity provider control plane)
// over a relation.
//
// The Requirer writes its desired ClientConfig to its partition of the relation. The
// Provider decodes it, decides whether it describes a new client or an update of the
// client it already issued for that relation, and eventually writes the client id together
// with a secret reference back to its own partition. The raw client secret never travels
// over the relation; the Requirer resolves the reference through a secret.Store.
//
// Both negotiators react to notifications delivered by the host (RelationEstablished,
// RelationChanged). Re-delivering a notification is always safe: every reaction is a
// function of the current relation contents.
package oauth
