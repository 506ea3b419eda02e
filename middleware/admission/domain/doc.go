// Package domain define contratos e tipos de domínio para o pipeline de admissão:
// rate limit por janela fixa, política de segurança, schema de validação e
// resultado terminal de cada estágio.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
