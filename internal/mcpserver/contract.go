package mcpserver

// TemplateLanguage describes the template language so LLM consumers can
// write and debug clip templates.
const TemplateLanguage = `# vaultclip Template Language

A template turns a clipped web page into an Obsidian note. It has a note name
format, a content format, an optional list of frontmatter properties, a target
folder (` + "`path`" + `) and a behavior.

## Variables

Write ` + "`{{name}}`" + ` to insert a variable. Unknown names render as nothing.

| Variable        | Meaning                                         |
|-----------------|-------------------------------------------------|
| title           | Page title                                      |
| url             | Page URL                                        |
| content         | Main content as Markdown                        |
| contentHtml     | Main content as HTML                            |
| selection       | Selected text as Markdown                       |
| selectionHtml   | Selected HTML                                   |
| author          | Author from page metadata                       |
| description     | Description from page metadata                  |
| domain          | Host name of the URL                            |
| favicon, image  | Absolute URLs from page metadata                |
| site            | Site name                                       |
| published       | Publication date                                |
| date, time      | Clip time (RFC 3339)                            |
| words           | Word count of content                           |
| noteName        | File-name safe title                            |
| fullHtml        | The whole page source                           |
| highlights      | List of {type, id, content, notes}              |
| meta            | Map of page meta tags, rendered as a JSON object |

Lists and maps render as JSON.

## Filters

Chain filters with ` + "`|`" + `: ` + "`{{title|lower|kebab}}`" + `. Arguments follow a colon
and may be quoted: ` + "`{{published|date:\"YYYY-MM-DD\"}}`" + `.

- upper, lower, capitalize, title, trim
- slice:start,end (negative indexes count from the end)
- replace:"old":"new" (literal, every occurrence)
- date:"FORMAT" with YYYY MM DD HH mm ss tokens
- wikilink, link (applied to each item of a list)
- blockquote, callout:"type"
- safe_name, kebab, snake, camel
- length (characters of text, items of a list)

## Blocks

` + "```" + `
{% if author %}By {{author}}{% endif %}

{% for h in highlights %}
> {{h.content}}
{% endfor %}
` + "```" + `

- ` + "`if`" + ` takes a single variable. Empty text, "0", "false" and empty lists are false.
- ` + "`for`" + ` iterates a list; ` + "`{{item}}`" + ` and ` + "`{{item.field}}`" + ` refer to the element.
- A block may not contain another block of the same kind.
- Filters are not evaluated on loop variables.

## Prompts

` + "`{{\"summarize this page\"}}`" + ` asks the caller for a value. Clip results list
unanswered prompts; pass answers back in ` + "`responses`" + ` keyed by prompt text.
Properties whose value still holds an unanswered prompt are left out.

## Properties

Each property has a name, a value template and a type: text, number, checkbox,
date, datetime or multitext. Multitext values are split on commas into a YAML
list. Properties that render empty are left out.

## Behaviors

- create: new note; a numeric suffix is added when the name is taken
- append-specific / prepend-specific: merge into the named note
- append-daily / prepend-daily: merge into today's daily note
- overwrite: replace the named note

When merging, only the clip's body is added; the existing note keeps its
frontmatter.

## Errors

Unbalanced or unknown ` + "`{% %}`" + ` tags, unknown filters and malformed
arguments are render errors. The clip is then saved with a plain fallback body
(title, content and source URL) and the error is reported.

## Example

` + "```" + `json
{
  "name": "Article",
  "behavior": "create",
  "noteNameFormat": "{{title|safe_name}}",
  "path": "Clippings",
  "noteContentFormat": "{% if author %}By {{author}}\n\n{% endif %}{{content}}",
  "properties": [
    {"name": "source", "value": "{{url}}", "type": "text"},
    {"name": "tags", "value": "clippings, {{domain}}", "type": "multitext"}
  ]
}
` + "```" + `
`
