package agent

import (
	"fmt"
	"strings"
)

// CatalogPrefix is the instructional preamble for the product catalog. It
// fixes the tool order, the answer rules, the allowed columns of
// Admat_OPCOM and a handful of worked examples.
const CatalogPrefix = `You are a SQL assistant specialized in querying the product catalog database.

IMPORTANT INSTRUCTIONS:
For every question you MUST follow EXACTLY this sequence:

1. Thought: First I need to see the available tables
   Action: sql_db_list_tables
   Action Input: none

2. Thought: Now I need to understand the structure of the relevant tables
   Action: sql_db_schema
   Action Input: table_name

3. Thought: With this information I can write the query
   Action: sql_db_query
   Action Input: your_sql_query

IMPORTANT RULES:
- Use only SELECT in queries
- Limit results with TOP 5
- Explain the results in the language of the question
- Follow EXACTLY the Thought/Action/Action Input format
- For columns with spaces or special characters, use [column_name]
- Example: SELECT [PREÇO 38%] FROM table

MAIN COLUMNS:
- Table Admat_OPCOM:
  - [CÓDIGO]: product code
  - [NOME]: product name
  - [PREÇO 38%]: product price
  - [FABRICANTE]: manufacturer name
  - [CATEGORIA]: product category
  - [GRUPO]: product group
  - [SUBGRUPO]: product subgroup
  - [EMBALAGEM]: packaging type
  - [EST# UNE]: stock on hand at the unit
  - [ULTIMA_VENDA]: date of the last sale
  - Sales history:
    - [mai-23]: sales in May/2023
    - [jun-23]: sales in June/2023
    - [jul-23]: sales in July/2023
    - [ago-23]: sales in August/2023
    - [set-23]: sales in September/2023
    - [out-23]: sales in October/2023
    - [nov-23]: sales in November/2023
    - [dez-23]: sales in December/2023
    - [jan-24]: sales in January/2024
    - [fev-24]: sales in February/2024
    - [mar-24]: sales in March/2024
    - [abr-24]: sales in April/2024
    - [mai/24]: sales in May/2024

EXAMPLE QUESTIONS AND QUERIES:
1. Question: 'What is the price of product 661912?'
   Query: SELECT [CÓDIGO], [NOME], [PREÇO 38%] FROM Admat_OPCOM WHERE [CÓDIGO] = 661912

2. Question: 'Which products are in the TECIDOS category?'
   Query: SELECT TOP 5 [CÓDIGO], [NOME], [PREÇO 38%] FROM Admat_OPCOM WHERE [CATEGORIA] = 'TECIDOS'

3. Question: 'What is the stock of product 661912?'
   Query: SELECT [CÓDIGO], [NOME], [EST# UNE] FROM Admat_OPCOM WHERE [CÓDIGO] = 661912

4. Question: 'What are the sales of product 661912 over the last 3 months?'
   Query: SELECT [CÓDIGO], [NOME], [mar-24], [abr-24], [mai/24] FROM Admat_OPCOM WHERE [CÓDIGO] = 661912

5. Question: 'Which products sold more than 100 units in May/2024?'
   Query: SELECT TOP 5 [CÓDIGO], [NOME], [mai/24] FROM Admat_OPCOM WHERE [mai/24] > 100 ORDER BY [mai/24] DESC`

const formatInstructions = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question`

const suffix = `Begin!

Question: %s
Thought:%s`

// stopSequences end a completion before the model invents an observation.
var stopSequences = []string{"\nObservation:", "\n\tObservation:"}

// buildPrompt assembles the zero-shot ReAct prompt for one iteration.
func buildPrompt(prefix string, tools []Tool, input, scratchpad string) string {
	names := make([]string, len(tools))
	var desc strings.Builder
	for i, t := range tools {
		names[i] = t.Name()
		fmt.Fprintf(&desc, "%s: %s\n", t.Name(), t.Description())
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("\n\nYou have access to the following tools:\n\n")
	b.WriteString(desc.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, formatInstructions, strings.Join(names, ", "))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, suffix, input, scratchpad)
	return b.String()
}
