// Package schema holds the declared interface of a process, meaning its
// ordered parameter specifications and return specification, together with
// the two mechanisms that populate and enforce it.
//
// Built-in processes declare their interface in HCL manifests shipped next to
// their Go handlers; parameter types are HCL type expressions translated to
// cty types, and the registry cross-checks each manifest against its handler's
// input struct at startup.
//
// User-defined processes declare their interface as JSON Schema fragments in
// their submission document, which are compiled once at registration and
// evaluated when the process is invoked.
//
// The binder (Bind, CheckReturn) is shared by both flavors: it checks
// presence of non-optional parameters, applies declared defaults, validates
// each supplied value structurally, and accumulates every violation found.
package schema
