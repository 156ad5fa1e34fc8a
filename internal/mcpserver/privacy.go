package mcpserver

// PrivacyModelContract describes the two summary layers and which
// surfaces may read each. Served over MCP so agent consumers know what
// the index will and will not reveal.
const PrivacyModelContract = `# Algiz Privacy Model

Algiz keeps two independently generated summaries for every indexed
document.

## Layers

- **private**: 5-7 bullet points, all key facts kept, including names,
  figures, and identifiers. Stored for the owner's own recall.
- **public**: 3-5 bullet points generated under instructions to redact
  sensitive details and remove specific names or identifiers. This is
  the only layer other agents can reach.

## Rules

1. **Search is public-only.** The search_index tool and the REST search
   endpoint read the public layer and nothing else. No keyword returns
   a private summary.
2. **read_public_summary is public-only.** There is no MCP tool that
   reads a private summary.
3. **Redaction is advisory.** The public summary is produced by a
   generative model following redaction instructions; nothing verifies
   the output. Treat public summaries as best-effort redaction, not a
   guarantee.
4. **summarize_text does not persist.** Text sent to the tool is
   summarized and returned; it is never added to the index.
5. **Indexing is owner-driven.** Only the index command and its
   configured roots feed the store; agents cannot write to it.

## Reading a summary

Call search_index with a keyword, then read_public_summary with the
path of a hit to get the full stored summary for that document.
`
