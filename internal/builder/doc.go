/*
Package builder assembles the codegen graph of a project. It is the bridge
between the static project model (the 'config' package) and generation (the
'codegen' and 'orchestrator' packages).

Construction is a multi-phase process:

 1. Node Creation: every `node` block is looked up in the registry, its
    arguments are decoded into the unit's config struct, and the unit is
    placed in the session graph.

 2. Input Linking: each entry of a node's `inputs` map is resolved to an
    output of another node and connected.

 3. Validation: the links are handed to the 'dag' package, and a cycle fails
    the build before any code is generated.
*/
package builder
