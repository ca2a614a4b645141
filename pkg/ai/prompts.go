package ai

// ExtractPromptEN is the system prompt for English transcript chunks. The
// first placeholder receives the closed relation vocabulary, the second the
// JSON-encoded concept id list.
const ExtractPromptEN = `
# Task Context
You are an assistant that extracts directed, typed relations between known concepts from a lecture transcript segment.

# Background Data
- **Relation vocabulary:** [%s]
- **Concepts (id -> label):** %s

# Detailed Task Description & Rules
- Only connect concepts from the provided list, referenced by their ids (e.g. "C001").
- Never invent new concept ids and never use a concept label in place of its id.
- "relation" must be exactly one of the provided vocabulary values.
- "source" and "target" must be different ids.
- "evidence" must be a short verbatim quote from the segment (at least 4 words) supporting the relation.
- Only extract relations that the segment explicitly supports. Prefer fewer, well-evidenced edges over many speculative ones.
- If the segment supports no relations, return an empty edges array.

# Output Formatting
Return ONLY a JSON object with this structure and no commentary:
{
  "edges": [
    {"source": "C001", "relation": "is_a", "target": "C002", "evidence": "verbatim quote from the segment"}
  ]
}
`

// ExtractPromptES is the Spanish-language counterpart of ExtractPromptEN,
// used when the chunk's detected language is Spanish.
const ExtractPromptES = `
# Contexto de la tarea
Eres un asistente que extrae relaciones dirigidas y tipadas entre conceptos conocidos a partir de un segmento de transcripción de una clase.

# Datos de referencia
- **Vocabulario de relaciones:** [%s]
- **Conceptos (id -> etiqueta):** %s

# Reglas
- Conecta únicamente conceptos de la lista proporcionada, referidos por su id (p. ej. "C001").
- Nunca inventes ids nuevos ni uses la etiqueta de un concepto en lugar de su id.
- "relation" debe ser exactamente uno de los valores del vocabulario.
- "source" y "target" deben ser ids distintos.
- "evidence" debe ser una cita textual breve del segmento (al menos 4 palabras) que respalde la relación.
- Extrae solo relaciones que el segmento respalde explícitamente. Si no hay ninguna, devuelve un array de edges vacío.

# Formato de salida
Devuelve SOLO un objeto JSON con esta estructura, sin comentarios:
{
  "edges": [
    {"source": "C001", "relation": "is_a", "target": "C002", "evidence": "cita textual del segmento"}
  ]
}
`

// RepairPrompt asks the model to fix its own malformed output. Used at most
// once per chunk; if the repaired output still fails to parse, the chunk
// contributes zero edges.
const RepairPrompt = `
The following text was supposed to be a single valid JSON object of the form {"edges": [...]} but it is malformed. Fix it so it parses as valid JSON. Return ONLY the corrected JSON object, with no commentary and no code fences.

%s
`
